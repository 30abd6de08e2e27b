// Package api serves the NEWS-2 scorer and the assessment history over
// HTTP with JSON bodies.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"fuzzynews/internal/logging"
	"fuzzynews/internal/news2"
	"fuzzynews/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Calculator scores one set of measurements. *news2.Scorer and
// *news2.Reloader implement it.
type Calculator interface {
	Calculate(ctx context.Context, m news2.Measurements) (*news2.Result, error)
}

// Config holds server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestSize  int64
	CORSOrigins     []string
	Version         string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8000",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxRequestSize:  1 << 20,
		CORSOrigins:     []string{"*"},
		Version:         "dev",
	}
}

// Server is the HTTP API server.
type Server struct {
	calc  Calculator
	store store.Store
	cfg   *Config
	log   *slog.Logger
	now   func() time.Time

	tracer   trace.Tracer
	duration metric.Float64Histogram
}

// NewServer wires calc and st behind the HTTP routes. A nil st keeps
// history in memory; a nil cfg uses DefaultConfig.
func NewServer(calc Calculator, st store.Store, cfg *Config) (*Server, error) {
	if calc == nil {
		return nil, errors.New("api: calculator is nil")
	}
	if st == nil {
		st = store.NewMemStore()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		calc:   calc,
		store:  st,
		cfg:    cfg,
		log:    logging.New("api"),
		now:    time.Now,
		tracer: otel.Tracer("fuzzynews/api"),
	}
	var err error
	s.duration, err = otel.Meter("fuzzynews/api").Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request latency by route and status"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("api: create latency histogram: %w", err)
	}
	return s, nil
}

// Handler returns the routed handler with CORS, logging, tracing and
// panic recovery applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/calculate", s.handleCalculate)
		r.Get("/history/{patient_id}", s.handleHistory)
		r.Get("/statistics/{patient_id}", s.handleStatistics)
	})
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
