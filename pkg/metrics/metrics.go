// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SavesTotal tracks save operations by parent type and outcome
	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "saves_total",
			Help:      "Total number of planning item saves by parent type and status",
		},
		[]string{"parent_type", "status"},
	)

	// SaveDuration tracks end-to-end save duration in seconds
	SaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "save_duration_seconds",
			Help:      "Duration of planning item saves in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"parent_type"},
	)

	// LinkRowsWritten tracks junction rows written per relation kind
	LinkRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "link_rows_written_total",
			Help:      "Total junction rows written by relation kind",
		},
		[]string{"relation"},
	)

	// SaveLockWaits tracks saves that had to wait for the per-parent lock
	SaveLockWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "save_lock_waits_total",
			Help:      "Total saves that contended on the per-parent lock",
		},
	)
)
