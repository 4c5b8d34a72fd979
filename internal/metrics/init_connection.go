package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initConnectionMetrics() {
	r.ConnectAttemptsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodesync_connect_attempts_total",
			Help: "Total number of connect requests by edge kind, status and rejection reason",
		},
		[]string{"kind", "status", "reason"},
	)

	r.DanglingHealedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodesync_dangling_healed_total",
			Help: "Total number of dangling references cleared",
		},
	)

	r.NodesDeletedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "nodesync_nodes_deleted_total",
			Help: "Total number of nodes deleted through the edge manager",
		},
	)

	r.DeletedNodeEdges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodesync_deleted_node_edges",
			Help:    "Number of edges cascaded away per deleted node",
			Buckets: []float64{0, 1, 2, 5, 10, 50},
		},
	)
}
