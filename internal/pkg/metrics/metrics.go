// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	CartOperations  *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	CatalogRequests *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
}

// New registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart operations by outcome.",
		}, []string{"op", "result"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "persist_failures_total",
			Help:      "Failed round trips to the cart key-value store.",
		}, []string{"op"}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog requests by endpoint and outcome.",
		}, []string{"endpoint", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.CartOperations,
		m.PersistFailures,
		m.CatalogRequests,
		m.HTTPRequests,
		m.HTTPLatency,
		collectors.NewGoCollector(),
	)

	return m
}

// CartOperation records the outcome of a cart operation
func (m *Metrics) CartOperation(op, result string) {
	m.CartOperations.WithLabelValues(op, result).Inc()
}

// PersistFailure records a failed storage read or write
func (m *Metrics) PersistFailure(op string) {
	m.PersistFailures.WithLabelValues(op).Inc()
}

// CatalogRequest records a catalog call
func (m *Metrics) CatalogRequest(endpoint, result string) {
	m.CatalogRequests.WithLabelValues(endpoint, result).Inc()
}

// HTTPRequest records a served request under its route template
func (m *Metrics) HTTPRequest(route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
