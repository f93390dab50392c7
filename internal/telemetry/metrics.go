// Package telemetry holds the process-wide prometheus collectors of the service.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheRequestsTotal counts metrics cache lookups by result (hit, miss, error)
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundmetrics_cache_requests_total",
			Help: "Total number of metrics cache lookups",
		},
		[]string{"result"},
	)

	// CacheInvalidationsTotal counts wholesale cache invalidations
	CacheInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fundmetrics_cache_invalidations_total",
			Help: "Total number of wholesale metrics cache invalidations",
		},
	)

	// RecordsComputedTotal counts freshly computed metrics records by IRR outcome
	RecordsComputedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundmetrics_records_computed_total",
			Help: "Total number of metrics records computed",
		},
		[]string{"irr"}, // defined, undefined
	)

	// BatchDuration observes end-to-end latency of dispatched batches
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundmetrics_batch_duration_seconds",
			Help:    "Batch metrics dispatch duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	// BatchRequestsTotal counts dispatched batches by outcome (ok, timeout, rejected, canceled)
	BatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundmetrics_batch_requests_total",
			Help: "Total number of batch metrics requests",
		},
		[]string{"outcome"},
	)

	// BatchPending tracks requests waiting for a worker response
	BatchPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundmetrics_batch_pending",
			Help: "Number of batch requests awaiting a response",
		},
	)
)
