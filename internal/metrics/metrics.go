// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PythonRequests counts calls to the Python service by endpoint and
	// outcome (success, unavailable, timeout, http_error, service_error,
	// rejected).
	PythonRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routevision_python_requests_total",
			Help: "Calls made to the Python route-video service",
		},
		[]string{"endpoint", "outcome"},
	)

	PythonLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routevision_python_request_duration_seconds",
			Help:    "Latency of calls to the Python route-video service",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"endpoint"},
	)

	// RouteLookups counts cached-pipeline decisions: database, python_cache
	// or miss.
	RouteLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routevision_route_lookups_total",
			Help: "Existing-route lookups by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "routevision_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
