package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sp3dr4/tern/config"
)

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":               "/",
		"/":              "/",
		"/health":        "/health",
		"/ready":         "/ready",
		"/metrics":       "/metrics",
		"/shorten":       "/shorten",
		"/swagger/index": "/swagger/*",
		"/redoc":         "/redoc",
		"/r/Ab3dE9":      "/r/{shortCode}",
		"/unknown/path":  "/unknown/path",
	}

	for path, want := range tests {
		assert.Equal(t, want, NormalizePath(path), path)
	}
}

func TestGetRoutePath_UsesChiPattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/r/{shortCode}", func(w http.ResponseWriter, r *http.Request) {
		got = GetRoutePath(r)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/r/Ab3dE9", nil))

	assert.Equal(t, "/r/{shortCode}", got)
}

func TestPrometheusMiddleware_RecordsRequests(t *testing.T) {
	registry, err := NewPrometheusRegistry(testMetricsConfig())
	assert.NoError(t, err)

	r := chi.NewRouter()
	r.Use(PrometheusMiddleware(registry, MetricsPath))
	r.Get("/r/{shortCode}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/r/Ab3dE9", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/r/Zz9yX8", nil))

	prom := registry.(*PrometheusRegistry)
	assert.Equal(t, 2.0, testutilValue(prom, "GET", "/r/{shortCode}", "302"))
}

func TestPrometheusMiddleware_SkipsMetricsPath(t *testing.T) {
	registry, err := NewPrometheusRegistry(testMetricsConfig())
	assert.NoError(t, err)

	r := chi.NewRouter()
	r.Use(PrometheusMiddleware(registry, "/internal/metrics"))
	r.Get("/internal/metrics", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))

	prom := registry.(*PrometheusRegistry)
	assert.Equal(t, 0.0, testutilValue(prom, "GET", "/internal/metrics", "200"))
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "/bad/path", SanitizeLabel("/bad/\"path\"\n"))
	assert.Len(t, SanitizeLabel("/"+strings.Repeat("x", 300)), 100)
}

func testMetricsConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:   true,
		Path:      MetricsPath,
		Namespace: "test",
		Subsystem: "test",
	}
}

func testutilValue(p *PrometheusRegistry, method, path, status string) float64 {
	return testutil.ToFloat64(p.httpRequestsTotal.WithLabelValues(method, path, status))
}
