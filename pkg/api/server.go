// Package api serves a read-only HTTP view of registered streams and captured
// frames, plus health and Prometheus endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ssargent/driftframe/pkg/capture"
	"github.com/ssargent/driftframe/pkg/metrics"
	"github.com/ssargent/driftframe/pkg/render"
	"github.com/ssargent/driftframe/pkg/schema"
)

// Server holds the API server state
type Server struct {
	registry *schema.Registry
	layouts  map[uint32]render.Layout
	source   capture.Source
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	config   ServerConfig
	log      zerolog.Logger
}

// NewServer creates a new API server. gatherer backs /metrics.
func NewServer(
	registry *schema.Registry,
	layouts map[uint32]render.Layout,
	source capture.Source,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config ServerConfig,
) *Server {
	log := zerolog.Nop()
	if config.Logger != nil {
		log = *config.Logger
	}
	if layouts == nil {
		layouts = map[uint32]render.Layout{}
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		registry: registry,
		layouts:  layouts,
		source:   source,
		metrics:  m,
		gatherer: gatherer,
		config:   config,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// Handler returns the router with all routes configured
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.metrics.InstrumentHandler("GET", "/health", s.handleHealth))
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(apiKeyMiddleware(s.config.APIKey))
		}

		r.Get("/streams", s.metrics.InstrumentHandler("GET", "/api/v1/streams", s.handleListStreams))
		r.Get("/streams/{stream}/captures",
			s.metrics.InstrumentHandler("GET", "/api/v1/streams/{stream}/captures", s.handleListCaptures))
		r.Get("/streams/{stream}/captures/{id}",
			s.metrics.InstrumentHandler("GET", "/api/v1/streams/{stream}/captures/{id}", s.handleGetCapture))
	})

	return r
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("starting inspection API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.log.Info().Msg("shutting down inspection API")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
