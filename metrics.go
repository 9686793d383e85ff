package edgecol

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEdgesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgecol_edges_appended_total",
			Help: "Total number of edge slots appended",
		},
		[]string{"collection", "edge_type"},
	)

	metricEdgesTombstoned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgecol_edges_tombstoned_total",
			Help: "Total number of edge slots soft-deleted",
		},
		[]string{"collection", "edge_type"},
	)

	metricSlotsReclaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgecol_slots_reclaimed_total",
			Help: "Total number of tombstoned slots dropped by compaction",
		},
		[]string{"collection", "edge_type"},
	)

	metricPathsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edgecol_paths_emitted_total",
			Help: "Total number of paths produced by traversals",
		},
	)

	metricTraversalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edgecol_traversal_duration_seconds",
			Help:    "Duration of path traversals in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"policy"},
	)
)
