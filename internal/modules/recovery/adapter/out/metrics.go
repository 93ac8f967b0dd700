package out

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_snapshots_total",
		Help: "Snapshots written by pool and status",
	}, []string{"pool", "status"})

	evictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_snapshot_evictions_total",
		Help: "Snapshot files deleted because a pool exceeded its cap",
	}, []string{"pool"})

	restoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studylog_restores_total",
		Help: "Record store restores by status",
	}, []string{"status"})
)
