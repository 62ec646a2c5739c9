package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	metrics.EntitiesIngestedTotal.Add(3)
	metrics.PagesRenderedTotal.WithLabelValues("multi-page", "markdown").Inc()
	metrics.BuildsTotal.WithLabelValues("success").Inc()

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
		assert.True(t, strings.HasPrefix(f.GetName(), "sourcedocs_"), f.GetName())
	}
	assert.True(t, names["sourcedocs_entities_ingested_total"])
	assert.True(t, names["sourcedocs_pages_rendered_total"])
	assert.True(t, names["sourcedocs_builds_total"])

	assert.Panics(t, func() { NewMetrics(registry) }, "double registration")
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	handler := HTTPMetricsMiddleware(metrics, func(*http.Request) string { return "/docs/{kind}/{page}" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "missing") {
				http.NotFound(w, r)
				return
			}
			io.WriteString(w, "# Foo\n")
		}),
	)

	for _, path := range []string{"/docs/classes/Foo", "/docs/classes/Bar", "/docs/classes/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/docs/{kind}/{page}", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/docs/{kind}/{page}", "404")))
}

func TestHTTPMetricsMiddleware_DefaultLabel(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	handler := HTTPMetricsMiddleware(metrics, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/entries", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/entries", "200")))
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.PagesTotal.Set(7)

	rec := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sourcedocs_pages 7")
}
