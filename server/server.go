// Package server exposes the plotting pipeline over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sartorproj/plotcast"
	"github.com/sartorproj/plotcast/config"
)

// Server represents the HTTP API server
type Server struct {
	cfg      *config.Config
	pipeline *plotcast.Pipeline
	registry *prometheus.Registry
	metrics  *httpMetrics
	limiters *clientLimiters
	logger   *log.Logger
	handler  http.Handler
	srv      *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server. HTTP metrics are registered on reg, which is also
// what /metrics exposes.
func New(cfg *config.Config, pipeline *plotcast.Pipeline, reg *prometheus.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		registry: reg,
		metrics:  newHTTPMetrics(reg),
		limiters: newClientLimiters(cfg.Server.RateLimit, cfg.Server.RateBurst),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	s.srv = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// API routes
	s.handle(mux, "POST /api/v1/forecast", s.limit(s.handleForecast))
	s.handle(mux, "POST /api/v1/export", s.limit(s.handleExport))
	s.handle(mux, "GET /api/v1/models", s.handleModels)

	s.handle(mux, "GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return corsMiddleware(s.cfg.Server.AllowedOrigin, s.requestID(mux))
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on the configured address until Shutdown, after
// which it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("[INFO] plotcast listening on %s", s.cfg.Server.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server. It is safe to call from another
// goroutine before or while ListenAndServe runs.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
