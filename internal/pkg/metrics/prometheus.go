package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sp3dr4/tern/config"
)

// PrometheusRegistry implements the Registry interface using Prometheus metrics
type PrometheusRegistry struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	urlsCreatedTotal    prometheus.Counter
	urlsRedirectedTotal prometheus.Counter
	codeCollisionsTotal prometheus.Counter

	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
}

// storeBuckets are finer than the HTTP defaults; most store calls finish well under 10ms.
var storeBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// NewPrometheusRegistry builds every collector on a private registry, so
// several instances can coexist in one process.
func NewPrometheusRegistry(cfg config.MetricsConfig) (Registry, error) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	counter := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help}
	}
	histogram := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help, Buckets: buckets}
	}
	httpLabels := []string{LabelMethod, LabelPath, LabelStatusCode}
	storeLabels := []string{LabelOperation, LabelStatus}

	p := &PrometheusRegistry{
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			counter("http_requests_total", "Total number of HTTP requests"), httpLabels),
		httpRequestDuration: factory.NewHistogramVec(
			histogram("http_request_duration_seconds", "HTTP request duration in seconds", prometheus.DefBuckets), httpLabels),
		httpRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		urlsCreatedTotal: factory.NewCounter(
			counter("urls_created_total", "Total number of short URLs created")),
		urlsRedirectedTotal: factory.NewCounter(
			counter("urls_redirected_total", "Total number of short codes resolved to a redirect")),
		codeCollisionsTotal: factory.NewCounter(
			counter("code_collisions_total", "Total number of generated short codes that were already taken")),

		storeOperationsTotal: factory.NewCounterVec(
			counter("store_operations_total", "Total number of store operations by outcome"), storeLabels),
		storeOperationDuration: factory.NewHistogramVec(
			histogram("store_operation_duration_seconds", "Store operation duration in seconds", storeBuckets), storeLabels),
	}

	if cfg.CollectRuntime {
		for _, c := range []prometheus.Collector{
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		} {
			if err := registry.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register runtime collector: %w", err)
			}
		}
	}

	return p, nil
}

func (p *PrometheusRegistry) RecordHTTPRequest(method, path, statusCode string, duration float64) {
	p.httpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	p.httpRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
}

func (p *PrometheusRegistry) IncHTTPRequestsInFlight() { p.httpRequestsInFlight.Inc() }
func (p *PrometheusRegistry) DecHTTPRequestsInFlight() { p.httpRequestsInFlight.Dec() }
func (p *PrometheusRegistry) IncURLsCreated()          { p.urlsCreatedTotal.Inc() }
func (p *PrometheusRegistry) IncURLsRedirected()       { p.urlsRedirectedTotal.Inc() }

// IncCodeCollisions counts a candidate code rejected because it was taken
func (p *PrometheusRegistry) IncCodeCollisions() {
	p.codeCollisionsTotal.Inc()
}

// RecordStoreOperation records the outcome and latency of one store call
func (p *PrometheusRegistry) RecordStoreOperation(operation, status string, duration float64) {
	p.storeOperationsTotal.WithLabelValues(operation, status).Inc()
	p.storeOperationDuration.WithLabelValues(operation, status).Observe(duration)
}

// GetRegistry returns the underlying Prometheus registry
func (p *PrometheusRegistry) GetRegistry() *prometheus.Registry {
	return p.registry
}

// GetHandler returns an HTTP handler for the metrics endpoint
func (p *PrometheusRegistry) GetHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
