package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initReloadMetrics() {
	r.ReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodesync_reloads_total",
			Help: "Total number of view reload passes by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	r.ReloadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodesync_reload_duration_seconds",
			Help:    "Wall time of view reload passes in seconds",
			Buckets: []float64{0.001, 0.004, 0.016, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"mode"},
	)

	r.ReloadTicks = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodesync_reload_ticks",
			Help:    "Number of host turns a reload pass ran in",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
		},
		[]string{"mode"},
	)

	r.NodesFlaggedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodesync_nodes_flagged_total",
			Help: "Total number of nodes skipped because their reconciliation failed",
		},
	)
}
