package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/pipeline"
)

const payload = `{
  "/proj/Sources/Foo.swift": [
    {
      "key.kind": "source.lang.swift.decl.class",
      "key.name": "Foo",
      "key.accessibility": "source.lang.swift.accessibility.public",
      "key.doc.comment": "A foo.",
      "key.parsed_declaration": "public class Foo",
      "key.substructure": [
        {
          "key.kind": "source.lang.swift.decl.struct",
          "key.name": "Bar",
          "key.accessibility": "source.lang.swift.accessibility.public"
        }
      ]
    },
    {
      "key.kind": "source.lang.swift.decl.struct",
      "key.name": "Hidden",
      "key.accessibility": "source.lang.swift.accessibility.internal"
    }
  ]
}`

type testServer struct {
	*Server
	builder  *pipeline.Builder
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, build bool) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	logger := observability.NewLogger(observability.ErrorLevel, &bytes.Buffer{})
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	builder := pipeline.NewBuilder(pipeline.Options{
		PayloadPath: path,
		ProjectRoot: "/proj",
		Docs:        docs.Options{Layout: docs.MultiPage, MinAccess: entity.Public, Title: "Kit"},
	}, nil, nil, nil, logger, metrics)

	if build {
		_, err := builder.Build(context.Background())
		require.NoError(t, err)
	}

	return &testServer{
		Server:   NewServer(builder, nil, metrics, registry, logger),
		builder:  builder,
		registry: registry,
	}
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.get(t, "/docs/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Kit\n"))
	assert.Contains(t, rec.Body.String(), "]: classes/Foo.md\n")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.get(t, "/docs")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/docs/", rec.Header().Get("Location"))
}

func TestServer_Page(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name        string
		target      string
		status      int
		contentType string
		contains    string
	}{
		{"with extension", "/docs/classes/Foo.md", http.StatusOK, "text/markdown; charset=utf-8", "# Foo\n"},
		{"without extension", "/docs/structs/Foo-Bar", http.StatusOK, "text/markdown; charset=utf-8", "# Foo.Bar\n"},
		{"html by name", "/docs/classes/Foo.html", http.StatusOK, "text/html; charset=utf-8", `<h1 id="foo">Foo</h1>`},
		{"html by query", "/docs/classes/Foo?format=html", http.StatusOK, "text/html; charset=utf-8", "<p>A foo.</p>"},
		{"unknown format", "/docs/classes/Foo?format=pdf", http.StatusBadRequest, "application/json", "unknown"},
		{"hidden entity", "/docs/structs/Hidden", http.StatusNotFound, "application/json", "not found"},
		{"unknown kind", "/docs/widgets/Foo", http.StatusNotFound, "application/json", "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServer_Search(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name  string
		query string
		want  map[string]string // name -> path
	}{
		{"by kind", "/search?kind=class", map[string]string{"Foo": "classes/Foo.md"}},
		{"by title", "/search?q=bar", map[string]string{"Foo.Bar": "structs/Foo-Bar.md"}},
		{"sourcekit kind label", "/search?kind=source.lang.swift.decl.struct", map[string]string{"Foo.Bar": "structs/Foo-Bar.md"}},
		{"lower access", "/search?kind=struct&min_access=internal", map[string]string{"Foo.Bar": "structs/Foo-Bar.md", "Hidden": ""}},
		{"no match", "/search?q=zzz", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.get(t, tt.query)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp SearchResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			got := make(map[string]string)
			for _, r := range resp.Results {
				got[r.Name] = r.Path
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), resp.Total)
		})
	}
}

func TestServer_SearchLimit(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.get(t, "/search?min_access=private&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 1)
	assert.Greater(t, resp.Total, 1)
}

func TestServer_SearchBadRequest(t *testing.T) {
	s := newTestServer(t, true)

	for _, target := range []string{"/search?min_access=secret", "/search?limit=0", "/search?limit=ten"} {
		rec := s.get(t, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestServer_Entries(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.get(t, "/entries")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []docs.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []docs.Entry{
		{Name: "Foo", Type: "Class", Path: "classes/Foo.md"},
		{Name: "Foo.Bar", Type: "Struct", Path: "structs/Foo-Bar.md"},
	}, entries)
}

func TestServer_NotBuilt(t *testing.T) {
	s := newTestServer(t, false)

	for _, target := range []string{"/docs/", "/docs/classes/Foo", "/search?q=foo", "/entries"} {
		rec := s.get(t, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}

	rec := s.get(t, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrNoSite.Error())

	_, err := s.builder.Build(context.Background())
	require.NoError(t, err)

	rec = s.get(t, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.get(t, "/docs/classes/Foo.md")
	s.get(t, "/docs/classes/Bar.md")

	rec = s.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sourcedocs_http_requests_total{method="GET",path="/docs/{kind}/{page}",status="200"} 1`)
	assert.Contains(t, body, `sourcedocs_http_requests_total{method="GET",path="/docs/{kind}/{page}",status="404"} 1`)
	assert.Contains(t, body, "sourcedocs_pages 3")
}

func TestServer_RecoversFromPanics(t *testing.T) {
	s := newTestServer(t, true)
	s.Router().HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := s.get(t, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
