// Package web serves the generated output tree for local preview.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appLog "rexgen/internal/log"
)

// Server exposes the output directory over HTTP, plus a /health endpoint.
type Server struct {
	addr string
	dir  string
	mux  *http.ServeMux
}

// NewServer constructs a preview server for the given output directory.
func NewServer(addr, dir string) *Server {
	s := &Server{
		addr: addr,
		dir:  dir,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/", http.FileServer(http.Dir(s.dir)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Handler returns the server's route mux.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("preview server listening", "addr", s.addr, "dir", s.dir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
