// Package server serves the test harness directory over HTTP for the
// duration of one run. The orchestrator consumes it through a start /
// base-URL / stop contract and treats everything else as internal.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrServerStart indicates the harness server could not bind its port.
var ErrServerStart = errors.New("harness server start failed")

// shutdownGrace bounds how long Stop waits for in-flight requests.
const shutdownGrace = 2 * time.Second

// Harness is a static file server rooted at the harness directory.
// Zero value is not usable; call Start before anything else.
type Harness struct {
	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
	host     string
	port     int
}

// Start binds 127.0.0.1:port (port 0 lets the OS pick) and begins serving
// rootPath. Bind failures surface as ErrServerStart; everything after a
// successful bind runs on a background goroutine.
func (h *Harness) Start(port int, rootPath string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listener != nil {
		return fmt.Errorf("%w: already started", ErrServerStart)
	}

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerStart, err)
	}

	router := chi.NewRouter()
	router.Use(middleware.NoCache)
	router.Handle("/*", http.FileServer(http.Dir(rootPath)))

	h.listener = listener
	h.srv = &http.Server{Handler: router}

	addr := listener.Addr().(*net.TCPAddr)
	h.host = "127.0.0.1"
	h.port = addr.Port

	go func() {
		// ErrServerClosed is the normal Stop path.
		_ = h.srv.Serve(listener)
	}()

	return nil
}

// Host returns the bound host. Valid only after Start succeeds.
func (h *Harness) Host() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.host
}

// Port returns the bound port. Valid only after Start succeeds.
func (h *Harness) Port() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.port
}

// BaseURL returns the root URL the browser should be pointed at.
func (h *Harness) BaseURL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fmt.Sprintf("http://%s:%d", h.host, h.port)
}

// Stop shuts the server down, waiting briefly for in-flight requests.
// Idempotent; stopping a never-started or already-stopped server is a no-op.
func (h *Harness) Stop() error {
	h.mu.Lock()
	srv := h.srv
	h.srv = nil
	h.listener = nil
	h.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(ctx)
}
