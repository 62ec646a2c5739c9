package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Ingestion metrics
	EntitiesIngestedTotal prometheus.Counter
	EntitiesDroppedTotal  prometheus.Counter
	IngestFailuresTotal   prometheus.Counter

	// Merge metrics
	ExtensionsMergedTotal *prometheus.CounterVec

	// Render metrics
	PagesRenderedTotal *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Output metrics
	SinkOperationsTotal   *prometheus.CounterVec
	SinkOperationDuration *prometheus.HistogramVec

	// Redis metrics
	RedisCommandsTotal *prometheus.CounterVec

	// Build metrics
	BuildsTotal   *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	EntitiesTotal prometheus.Gauge
	PagesTotal    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcedocs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcedocs_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		EntitiesIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sourcedocs_entities_ingested_total",
				Help: "Total number of entities created from parser records",
			},
		),
		EntitiesDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sourcedocs_entities_dropped_total",
				Help: "Total number of records skipped for a missing name or access level",
			},
		),
		IngestFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sourcedocs_ingest_failures_total",
				Help: "Total number of parser payloads that failed to decode",
			},
		),

		ExtensionsMergedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_extensions_merged_total",
				Help: "Total number of extension attachments by merge pass",
			},
			[]string{"pass"},
		),

		PagesRenderedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_pages_rendered_total",
				Help: "Total number of rendered pages",
			},
			[]string{"layout", "format"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcedocs_render_duration_seconds",
				Help:    "Site render duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"layout"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_cache_hits_total",
				Help: "Total number of page cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_cache_misses_total",
				Help: "Total number of page cache misses",
			},
			[]string{"cache_type"},
		),

		SinkOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_sink_operations_total",
				Help: "Total number of output sink writes",
			},
			[]string{"backend", "status"},
		),
		SinkOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sourcedocs_sink_operation_duration_seconds",
				Help:    "Output sink write duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),

		RedisCommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_redis_commands_total",
				Help: "Total number of Redis commands",
			},
			[]string{"command", "status"},
		),

		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sourcedocs_builds_total",
				Help: "Total number of documentation builds",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sourcedocs_build_duration_seconds",
				Help:    "Documentation build duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
			},
		),
		EntitiesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sourcedocs_entities",
				Help: "Number of top-level entities in the current site",
			},
		),
		PagesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sourcedocs_pages",
				Help: "Number of pages in the current site",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.EntitiesIngestedTotal,
		m.EntitiesDroppedTotal,
		m.IngestFailuresTotal,
		m.ExtensionsMergedTotal,
		m.PagesRenderedTotal,
		m.RenderDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SinkOperationsTotal,
		m.SinkOperationDuration,
		m.RedisCommandsTotal,
		m.BuildsTotal,
		m.BuildDuration,
		m.EntitiesTotal,
		m.PagesTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// pathLabel maps a request to a bounded label, typically its route template.
func HTTPMetricsMiddleware(metrics *Metrics, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	if pathLabel == nil {
		pathLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := pathLabel(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.bytesWritten))
		})
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
