package httpserver

import (
	"context"
	"net/http"
	"time"
)

// New builds an *http.Server with conservative timeouts so slow clients
// cannot hold connections open indefinitely.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Server wraps http.Server to keep main lean.
type Server struct {
	srv *http.Server
}

// ListenAndServe starts serving; it blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
