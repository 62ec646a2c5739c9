package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/httputil"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/pipeline"
)

// ErrNoSite is reported by the readiness check until the first build succeeds
var ErrNoSite = errors.New("no site has been built yet")

// Server serves the most recent site of a pipeline.Builder
type Server struct {
	builder   *pipeline.Builder
	router    *mux.Router
	converter *docs.HTMLConverter
	health    *observability.HealthChecker
	metrics   *observability.Metrics
	registry  *prometheus.Registry
	logger    *observability.Logger
}

// NewServer creates a new API server. health, metrics and registry may be
// nil; /metrics is only mounted when registry is set.
func NewServer(builder *pipeline.Builder, health *observability.HealthChecker, metrics *observability.Metrics, registry *prometheus.Registry, logger *observability.Logger) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}
	if health == nil {
		health = observability.NewHealthChecker(nil, nil)
	}

	s := &Server{
		builder:   builder,
		router:    mux.NewRouter(),
		converter: docs.NewHTMLConverter(),
		health:    health,
		metrics:   metrics,
		registry:  registry,
		logger:    logger,
	}
	s.health.AddCheck("site", s.checkSite)

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	if s.metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.metrics, routeTemplate))
	}

	// Documentation
	s.router.Handle("/docs", http.RedirectHandler("/docs/", http.StatusMovedPermanently)).Methods("GET")
	s.router.HandleFunc("/docs/", s.getIndex).Methods("GET")
	s.router.HandleFunc("/docs/{kind}/{page}", s.getPage).Methods("GET")

	// Lookup
	s.router.HandleFunc("/search", s.search).Methods("GET")
	s.router.HandleFunc("/entries", s.listEntries).Methods("GET")

	// Operations
	s.router.HandleFunc("/health/live", s.health.Liveness).Methods("GET")
	s.router.HandleFunc("/health/ready", s.health.Readiness).Methods("GET")
	if s.registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.registry)).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the router wrapped in tracing, request IDs, logging and
// panic recovery.
func (s *Server) Handler() http.Handler {
	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
	)
	return otelhttp.NewHandler(chain(s.router), "sourcedocs")
}

// Router exposes the router for additional routes
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) checkSite(context.Context) error {
	if s.builder.Site() == nil {
		return ErrNoSite
	}
	return nil
}

// routeTemplate labels metrics by route so page names stay out of label values
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
