// Package metrics exposes prometheus metrics for reloads, connections and the
// resolver cache.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics of one engine instance.
type Registry struct {
	// Reload Metrics
	ReloadsTotal      *prometheus.CounterVec
	ReloadDuration    *prometheus.HistogramVec
	ReloadTicks       *prometheus.HistogramVec
	NodesFlaggedTotal prometheus.Counter

	// Connection Metrics
	ConnectAttemptsTotal *prometheus.CounterVec
	DanglingHealedTotal  prometheus.Counter
	NodesDeletedTotal    prometheus.Counter
	DeletedNodeEdges     prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initReloadMetrics()
	r.initConnectionMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
