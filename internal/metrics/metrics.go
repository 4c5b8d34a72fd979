package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/nodesync/internal/edges"
	"github.com/vk/nodesync/internal/model"
	"github.com/vk/nodesync/internal/viewsync"
)

// ReloadFinished records a finished reload pass. It implements viewsync.Recorder.
func (r *Registry) ReloadFinished(mode viewsync.Mode, outcome viewsync.Outcome, elapsed time.Duration, ticks int) {
	r.ReloadsTotal.WithLabelValues(mode.String(), outcome.String()).Inc()
	if outcome != viewsync.Completed {
		return
	}
	r.ReloadDuration.WithLabelValues(mode.String()).Observe(elapsed.Seconds())
	r.ReloadTicks.WithLabelValues(mode.String()).Observe(float64(ticks))
}

// NodeFlagged implements viewsync.Recorder.
func (r *Registry) NodeFlagged() {
	r.NodesFlaggedTotal.Inc()
}

// ConnectAttempt records a connect request. It implements edges.Recorder.
func (r *Registry) ConnectAttempt(kind model.Kind, status edges.Status, reason edges.Reason) {
	r.ConnectAttemptsTotal.WithLabelValues(kind.String(), status.String(), reason.String()).Inc()
}

// DanglingHealed implements edges.Recorder.
func (r *Registry) DanglingHealed(n int) {
	r.DanglingHealedTotal.Add(float64(n))
}

// NodeDeleted implements edges.Recorder.
func (r *Registry) NodeDeleted(edgeCount int) {
	r.NodesDeletedTotal.Inc()
	r.DeletedNodeEdges.Observe(float64(edgeCount))
}

// CacheStatser is implemented by the resolver.
type CacheStatser interface {
	CacheStats() (hits, misses uint64)
}

// RegisterResolverCache exposes the resolver cache counters. It must be called
// at most once per registry.
func (r *Registry) RegisterResolverCache(c CacheStatser) {
	promauto.With(r.registry).NewCounterFunc(
		prometheus.CounterOpts{
			Name: "nodesync_resolver_cache_hits_total",
			Help: "Total number of type resolutions served from the cache",
		},
		func() float64 {
			hits, _ := c.CacheStats()
			return float64(hits)
		},
	)
	promauto.With(r.registry).NewCounterFunc(
		prometheus.CounterOpts{
			Name: "nodesync_resolver_cache_misses_total",
			Help: "Total number of type resolutions computed",
		},
		func() float64 {
			_, misses := c.CacheStats()
			return float64(misses)
		},
	)
}

var (
	_ viewsync.Recorder = (*Registry)(nil)
	_ edges.Recorder    = (*Registry)(nil)
)
