// Package metrics exposes the Prometheus instrumentation of the audit
// pipeline. Collectors register themselves on the default registry; the
// server serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts processed export files by detected format and
	// outcome (ok, error, unknown).
	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationscope_files_processed_total",
			Help: "Total number of export files processed",
		},
		[]string{"format", "outcome"},
	)

	// BatchesProcessed counts completed audit batches.
	BatchesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stationscope_batches_processed_total",
			Help: "Total number of audit batches processed",
		},
	)

	// BatchDuration tracks end-to-end batch processing time.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stationscope_batch_duration_seconds",
			Help:    "Audit batch processing duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// DevicesDiscovered counts devices found in driver exports by protocol.
	DevicesDiscovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationscope_devices_discovered_total",
			Help: "Total number of devices discovered in driver exports",
		},
		[]string{"protocol"},
	)

	// ConsistencyFailures counts cross-validation checks that came back
	// inconsistent, by check name.
	ConsistencyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationscope_consistency_failures_total",
			Help: "Total number of failed cross-validation checks",
		},
		[]string{"check"},
	)
)
