package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry defines the interface for metrics collection
type Registry interface {
	// HTTP Metrics
	RecordHTTPRequest(method, path, statusCode string, duration float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()

	// Business Metrics
	IncURLsCreated()
	IncURLsRedirected()
	IncCodeCollisions()

	// Store Metrics
	RecordStoreOperation(operation, status string, duration float64)

	// Prometheus-specific methods
	GetRegistry() *prometheus.Registry
	GetHandler() http.Handler
}

// NoOpRegistry provides a no-op implementation for when metrics are disabled
type NoOpRegistry struct{}

func NewNoOpRegistry() Registry {
	return &NoOpRegistry{}
}

func (n *NoOpRegistry) RecordHTTPRequest(method, path, statusCode string, duration float64) {}
func (n *NoOpRegistry) IncHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) DecHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) IncURLsCreated()                                                     {}
func (n *NoOpRegistry) IncURLsRedirected()                                                  {}
func (n *NoOpRegistry) IncCodeCollisions()                                                  {}
func (n *NoOpRegistry) RecordStoreOperation(operation, status string, duration float64)     {}
func (n *NoOpRegistry) GetRegistry() *prometheus.Registry                                   { return nil }
func (n *NoOpRegistry) GetHandler() http.Handler                                            { return nil }

// Common label names as constants
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatusCode = "status_code"
	LabelOperation  = "operation"
	LabelStatus     = "status"
)

// Store operation outcomes used for the LabelStatus label.
const (
	StatusOK          = "ok"
	StatusNotFound    = "not_found"
	StatusDuplicate   = "duplicate"
	StatusUnavailable = "unavailable"
)
