// Package server assembles the host HTTP handler: host endpoints, the
// applications API and the mounted plugins.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/apphost/pkg/apps"
	"github.com/platinummonkey/apphost/pkg/httputil"
	"github.com/platinummonkey/apphost/pkg/observability"
	"github.com/platinummonkey/apphost/pkg/plugins"
)

// ReservedPaths are owned by the host. No plugin may be mounted at or below
// them.
var ReservedPaths = []string{"/api", "/healthz", "/readyz", "/metrics"}

// ErrNotMounted is reported by the readiness check until plugins are mounted
var ErrNotMounted = errors.New("plugins not mounted")

// Server is the host HTTP handler
type Server struct {
	router   *mux.Router
	handler  http.Handler
	registry *plugins.Registry
	mounter  *plugins.Mounter
	health   *observability.HealthChecker
	log      *logrus.Logger

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	tracing  bool
	version  string
}

// Option configures a Server
type Option func(*Server)

// WithMetrics records HTTP and plugin metrics and serves them on /metrics
func WithMetrics(metrics *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = metrics
		s.gatherer = gatherer
	}
}

// WithTracing wraps the handler with OpenTelemetry instrumentation
func WithTracing(enabled bool) Option {
	return func(s *Server) {
		s.tracing = enabled
	}
}

// WithVersion sets the version reported by the health endpoints
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New creates the host server for reg. Plugins are attached by MountPlugins.
func New(reg *plugins.Registry, log *logrus.Logger, opts ...Option) *Server {
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		router:   mux.NewRouter(),
		registry: reg,
		mounter:  plugins.NewMounter(log, ReservedPaths...),
		log:      log,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics != nil && s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}

	s.health = observability.NewHealthChecker(s.version)
	s.health.AddCheck("plugins", func(ctx context.Context) error {
		if !s.registry.Sealed() {
			return ErrNotMounted
		}
		return nil
	})

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	unrouted := httputil.UnroutedHandler(s.router, func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, plugins.ErrNotFound.Error()+": "+r.URL.Path)
	})
	s.router.NotFoundHandler = unrouted
	s.router.MethodNotAllowedHandler = unrouted

	s.router.HandleFunc("/healthz", s.health.Liveness).Methods(http.MethodGet)
	s.router.HandleFunc("/readyz", s.health.Readiness).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
		s.router.Handle("/metrics", observability.MetricsHandler(s.gatherer)).Methods(http.MethodGet)
	}

	apps.NewHandlers(s.registry).RegisterRoutes(s.router)

	var handler http.Handler = s.router
	handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(s.log),
		httputil.LoggingMiddleware(s.log),
	)(handler)
	if s.tracing {
		handler = observability.TraceHandler(handler, "apphost")
	}
	s.handler = handler
}

// MountPlugins attaches every registered plugin. After it succeeds the
// registry is sealed and readiness reports healthy.
func (s *Server) MountPlugins() error {
	if err := s.mounter.Mount(s.router, s.registry); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.PluginsLoaded.Set(float64(s.registry.Count()))
		s.metrics.ApplicationsTotal.Set(float64(apps.Count(s.registry)))
	}
	s.log.WithField("plugins", s.registry.Count()).Info("All plugins mounted")
	return nil
}

// Mounted reports whether MountPlugins has succeeded
func (s *Server) Mounted() bool {
	return s.mounter.Mounted()
}

// Router returns the underlying router
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
