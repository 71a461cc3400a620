package server

import (
	"fmt"
	"log"
	"net/http"
)

// Server is the HTTP server for the web interface.
type Server struct {
	mux       *http.ServeMux
	handler   *Handlers
	addr      string
	staticDir string
}

// NewServer creates a new HTTP server.
func NewServer(addr string, handler *Handlers, staticDir string) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		handler:   handler,
		addr:      addr,
		staticDir: staticDir,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API routes: a read-only snapshot of receiver state plus the device
	// list, mirroring spec.md §6's CLI/server surface sketch.
	s.mux.HandleFunc("/api/status", s.handler.HandleStatus)
	s.mux.HandleFunc("/api/devices", s.handler.HandleDevices)

	// WebSocket event stream
	s.mux.HandleFunc("/ws/events", s.handler.HandleWebSocket)

	// Static files, if a UI is served alongside the API.
	if s.staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server on %s", s.addr)
	fmt.Printf("\n  DAB receiver observer bridge running at http://%s\n\n", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
