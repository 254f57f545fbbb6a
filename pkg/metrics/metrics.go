// Package metrics exposes Prometheus instrumentation for the warehouse
// service. Metrics register on the default registry; the router serves them
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velora_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "velora_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StockMovementsTotal counts recorded ledger movements by type.
	StockMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velora_stock_movements_total",
			Help: "Total number of recorded stock movements",
		},
		[]string{"movement_type"},
	)

	// DocumentTransitionsTotal counts document status transitions.
	DocumentTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "velora_document_transitions_total",
			Help: "Total number of document status transitions",
		},
		[]string{"document", "transition"},
	)
)

// RecordMovement increments the movement counter.
func RecordMovement(movementType string) {
	StockMovementsTotal.WithLabelValues(movementType).Inc()
}

// RecordTransition increments the document transition counter.
func RecordTransition(document, transition string) {
	DocumentTransitionsTotal.WithLabelValues(document, transition).Inc()
}
