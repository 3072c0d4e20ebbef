// Package server exposes the audit pipeline over HTTP: batch processing,
// stored run retrieval, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/internal/store"
	"github.com/griddock/stationscope/internal/version"
)

// maxBatchBytes caps a process request body. Export batches are text; a
// supervisor site's full export set stays well under this.
const maxBatchBytes = 64 << 20

// Server is the StationScope HTTP server.
type Server struct {
	httpServer *http.Server
	processor  *processor.Processor
	store      *store.SQLiteStore
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance.
func New(addr string, proc *processor.Processor, st *store.SQLiteStore, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		processor: proc,
		store:     st,
		logger:    logger,
		mux:       mux,
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/v1/audit/process", s.handleProcess)
	s.mux.HandleFunc("GET /api/v1/audit/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /api/v1/audit/runs/{id}", s.handleGetRun)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the route mux, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-StationScope-Version", version.Short())
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stationscope",
		"version": version.Map(),
	})
}
