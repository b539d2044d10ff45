// Package api serves the tracetube pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz        liveness check
//	GET  /metrics        Prometheus exposition
//	POST /v1/validate    validate a trace document
//	POST /v1/branches    decompose a trace into branches
//	POST /v1/fit         fit a spline tree to a trace
//	POST /v1/tube        render a vertex sequence to an encoded mask
//	POST /v1/subsample   crop the centred window of a flat array
//
// Trace endpoints take a trace document (see package traceio) as the body
// and their options as query parameters.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tracetube/pkg/pipeline"
)

// Config configures the server. It is embedded in the CLI config file under
// [server].
type Config struct {
	Addr         string        `toml:"addr" validate:"omitempty,hostname_port"`
	MaxBodyBytes int64         `toml:"max_body_bytes" validate:"gte=0"`
	Timeout      time.Duration `toml:"timeout" validate:"gte=0"`
}

// Defaults for Config fields left at zero.
const (
	DefaultAddr    = "127.0.0.1:8080"
	DefaultTimeout = 2 * time.Minute
)

// Server routes API requests to a pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	cfg      Config
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New builds a server. A nil gatherer serves the default Prometheus
// registry on /metrics.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	s := &Server{
		runner:   runner,
		logger:   logger.WithPrefix("api"),
		cfg:      cfg,
		gatherer: gatherer,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Post("/validate", s.handleValidate)
		r.Post("/branches", s.handleBranches)
		r.Post("/fit", s.handleFit)
		r.Post("/tube", s.handleTube)
		r.Post("/subsample", s.handleSubsample)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
