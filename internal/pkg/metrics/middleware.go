package metrics

import (
	"net/http"
	"time"
)

const (
	// MetricsPath is the default path for the metrics endpoint
	MetricsPath = "/metrics"
)

// statusRecorder captures the first status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(data []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(data)
}

// PrometheusMiddleware records request count, latency and in-flight gauge for
// every route except the exposition endpoint itself.
func PrometheusMiddleware(registry Registry, metricsPath string) func(http.Handler) http.Handler {
	if metricsPath == "" {
		metricsPath = MetricsPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == metricsPath {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			registry.IncHTTPRequestsInFlight()
			defer registry.DecHTTPRequestsInFlight()

			ww := newStatusRecorder(w)
			next.ServeHTTP(ww, r)

			// chi fills in the route pattern while routing, so it is read afterwards.
			registry.RecordHTTPRequest(
				r.Method,
				GetRoutePath(r),
				FormatStatusCode(ww.statusCode),
				time.Since(start).Seconds(),
			)
		})
	}
}
