// Package reload pushes reload messages to browsers over WebSocket.
package reload

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.trai.ch/jig/internal/core/domain"
)

const writeTimeout = 5 * time.Second

// Observer is told about broadcasts and connection changes.
type Observer interface {
	ObserveReload()
	SetClients(n int)
}

// Hub implements ports.Notifier for WebSocket clients.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*websocket.Conn
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	observer Observer
}

// NewHub creates a hub with no clients. observer may be nil.
func NewHub(observer Observer) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		observer: observer,
	}
}

// HandleWebSocket upgrades the request and keeps the client registered until it
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	id := uuid.NewString()
	h.register(id, conn)
	defer h.drop(id)

	// Clients never send anything meaningful; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast delivers msg to every connected client. Clients that fail the write are
// disconnected.
func (h *Hub) Broadcast(msg domain.ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make(map[string]*websocket.Conn, len(h.clients))
	for id, conn := range h.clients {
		targets[id] = conn
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	var failed []string
	for id, conn := range targets {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, id)
		}
	}
	h.writeMu.Unlock()

	for _, id := range failed {
		h.drop(id)
	}
	if h.observer != nil {
		h.observer.ObserveReload()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for id, conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, id)
	}
	h.mu.Unlock()
	h.report()
}

func (h *Hub) register(id string, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	h.report()
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	conn, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if !ok {
		return
	}
	_ = conn.Close()
	h.report()
}

func (h *Hub) report() {
	if h.observer != nil {
		h.observer.SetClients(h.ClientCount())
	}
}
