// Package web serves the daemon's status over HTTP: an HTML page for people
// and the same snapshot as JSON for scripts.
package web

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/stabilizer/internal/status"
)

// Server renders tracker snapshots.
type Server struct {
	srv     *http.Server
	tracker *status.Tracker
}

// New returns a Server for addr. Nothing listens until ListenAndServe or Serve.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /index.html", s.index)
	mux.HandleFunc("GET /index.json", s.indexJSON)

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe blocks until Shutdown.
func (s *Server) ListenAndServe() error { return s.srv.ListenAndServe() }

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, s.tracker.Snapshot()); err != nil {
		log.Printf("web: render index: %v", err)
	}
}

func (s *Server) indexJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(status.FormatJSON(s.tracker.Snapshot())); err != nil {
		log.Printf("web: write json: %v", err)
	}
}
