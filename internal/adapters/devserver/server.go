// Package devserver hosts the reload channel, client script, metrics, and optionally
// the built site.
package devserver

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.trai.ch/jig/internal/adapters/reload"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/zerr"
)

// Routes served under the reserved prefix.
const (
	ReloadPath  = "/_jig/reload"
	ClientPath  = "/_jig/client.js"
	MetricsPath = "/_jig/metrics"
)

const readHeaderTimeout = 10 * time.Second

//go:embed placeholder.html
var placeholderSource string

var placeholderTemplate = template.Must(template.New("placeholder").Parse(placeholderSource))

// Options configures a Server.
type Options struct {
	// Listen is the TCP address to bind.
	Listen string
	// AppURL is shown on the placeholder page.
	AppURL string
	// SiteDir is served with the reload script injected. Empty disables it.
	SiteDir string
	// HotFile receives the server URL while running. Empty disables it.
	HotFile string
}

// Suppressor decides which stylesheet updates give way to a full reload.
type Suppressor interface {
	ShouldSuppressUpdate(path string) bool
}

// Server is the development HTTP host.
type Server struct {
	opts       Options
	hub        *reload.Hub
	metrics    http.Handler
	suppressor Suppressor
	logger     ports.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// New creates a Server. metrics and suppressor may be nil.
func New(opts Options, hub *reload.Hub, metrics http.Handler, suppressor Suppressor, logger ports.Logger) *Server {
	return &Server{
		opts:       opts,
		hub:        hub,
		metrics:    metrics,
		suppressor: suppressor,
		logger:     logger,
	}
}

// Handler returns the routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get(ReloadPath, s.hub.HandleWebSocket)
	r.Get(ClientPath, reload.ServeClientScript)
	if s.metrics != nil {
		r.Method(http.MethodGet, MetricsPath, s.metrics)
	}

	if s.opts.SiteDir != "" {
		r.Get("/*", s.serveSite)
		return r
	}
	r.Get("/", s.servePlaceholder)
	r.Get("/index.html", s.servePlaceholder)
	return r
}

// Start binds the listener and writes the hot file.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "listen", s.opts.Listen)
	}

	s.mu.Lock()
	s.listener = listener
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.mu.Unlock()

	if s.opts.HotFile != "" {
		if err := os.WriteFile(s.opts.HotFile, []byte(s.URL()), domain.FilePerm); err != nil {
			_ = listener.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrHotFileWriteFailed.Error()), "path", s.opts.HotFile)
		}
	}
	return nil
}

// Serve handles requests until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, listener := s.srv, s.listener
	s.mu.Unlock()
	if srv == nil {
		return zerr.Wrap(errors.New("server not started"), domain.ErrServerFailed.Error())
	}

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return zerr.Wrap(err, domain.ErrServerFailed.Error())
	}
	return nil
}

// URL returns the address clients reach the server at.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return "http://" + s.opts.Listen
	}
	return "http://" + s.listener.Addr().String()
}

// Shutdown stops the server, disconnects reload clients, and removes the hot file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, listener := s.srv, s.listener
	s.mu.Unlock()

	s.hub.Close()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
		// Shutdown only closes listeners Serve is using.
		if closeErr := listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = errors.Join(err, closeErr)
		}
	}
	if s.opts.HotFile != "" {
		if rmErr := os.Remove(s.opts.HotFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

// NotifyStylesheet asks clients to refresh stylesheets after path changed.
// It reports false when path is not a stylesheet or a full reload covers it.
func (s *Server) NotifyStylesheet(changed string) bool {
	if !strings.EqualFold(filepath.Ext(changed), ".css") {
		return false
	}
	if s.suppressor != nil && s.suppressor.ShouldSuppressUpdate(changed) {
		return false
	}
	s.hub.Broadcast(domain.ReloadMessage{Type: domain.ReloadTypeCSS, Path: filepath.ToSlash(changed)})
	return true
}

func (s *Server) servePlaceholder(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := placeholderTemplate.Execute(&buf, struct {
		AppURL string
		Script template.HTML
	}{
		AppURL: s.opts.AppURL,
		Script: template.HTML(reload.ScriptTag), //nolint:gosec // constant markup
	})
	if err != nil {
		s.logger.Error(zerr.Wrap(err, "failed to render placeholder page"))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(buf.Bytes())
}

// serveSite serves SiteDir, injecting the reload script into HTML documents.
func (s *Server) serveSite(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	file := filepath.Join(s.opts.SiteDir, filepath.FromSlash(name))

	if info, err := os.Stat(file); err == nil && info.IsDir() {
		file = filepath.Join(file, "index.html")
	}

	if !strings.EqualFold(filepath.Ext(file), ".html") {
		http.ServeFile(w, r, file)
		return
	}

	body, err := os.ReadFile(file) //nolint:gosec // confined to SiteDir by path.Clean
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(InjectScript(body))
}

// InjectScript inserts the reload script tag before the closing body tag, falling back
// to the closing html tag and then to the end of the document.
func InjectScript(html []byte) []byte {
	tag := []byte(reload.ScriptTag)
	for _, marker := range [][]byte{[]byte("</body>"), []byte("</html>")} {
		if idx := bytes.LastIndex(html, marker); idx != -1 {
			out := make([]byte, 0, len(html)+len(tag))
			out = append(out, html[:idx]...)
			out = append(out, tag...)
			return append(out, html[idx:]...)
		}
	}
	return append(append([]byte(nil), html...), tag...)
}
