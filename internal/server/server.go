package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/stradadb/pkg/engine"
)

var errMalformedLoc = errors.New("malformed loc parameter, expected lat,lon")

// Server holds the HTTP interface on top of the query engine.
type Server struct {
	engine     *engine.Engine
	httpServer *http.Server
}

// NewServer wires the HTTP stack around an existing engine.
// Note: the engine must be constructed (engine.New) before passing it here.
func NewServer(eng *engine.Engine, httpAddr string) *Server {
	s := &Server{engine: eng}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Mux
	// Order matters! Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:    httpAddr,
		Handler: rootMux,
	}

	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully. It does NOT close the engine;
// main handles that for proper lifecycle management.
func (s *Server) Shutdown() {
	log.Println("Starting graceful shutdown of HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
