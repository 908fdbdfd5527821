// Package httpapi exposes the query surface of the cleaned county table over
// HTTP, plus the usual health, readiness, and metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
	"github.com/couchcryptid/county-aqi-service/internal/pipeline"
)

// Server serves the county query API.
type Server struct {
	httpServer *http.Server
	loader     *pipeline.Loader
	states     domain.StateLister
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the API server. states may be nil, in which case
// /api/states serves an empty list and the capability is reported off.
func NewServer(addr string, loader *pipeline.Loader, states domain.StateLister, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		loader:  loader,
		states:  states,
		logger:  logger,
		metrics: metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/counties", s.handleCounties)
	mux.HandleFunc("GET /api/counties/top", s.handleTopCounties)
	mux.HandleFunc("GET /api/aggregate", s.handleAggregate)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/bounds", s.handleBounds)
	mux.HandleFunc("GET /api/states", s.handleStates)
	mux.HandleFunc("GET /api/capabilities", s.handleCapabilities)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.loader.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// dataset loads (or returns the cached) cleaned table, writing a 503 and
// returning nil on failure.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) *pipeline.Result {
	res, err := s.loader.Load(r.Context())
	if err != nil {
		s.logger.Error("dataset load failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dataset unavailable"})
		return nil
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
