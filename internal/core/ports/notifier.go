package ports

import "go.trai.ch/jig/internal/core/domain"

// Notifier broadcasts reload messages to connected clients.
//
//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	// Broadcast delivers msg to every connected client.
	Broadcast(msg domain.ReloadMessage)
	// ClientCount returns the number of connected clients.
	ClientCount() int
}
