package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemOutcomes counts per-item delivery results.
	ItemOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wirecomb_item_outcomes_total",
			Help: "Wire items processed, by kind and outcome",
		},
		[]string{"profile", "kind", "status"},
	)

	// DownstreamRequests counts calls to the content APIs.
	DownstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wirecomb_downstream_requests_total",
			Help: "Requests sent to downstream content APIs",
		},
		[]string{"endpoint", "method", "status"},
	)

	RateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wirecomb_rate_limit_wait_seconds",
			Help:    "Time spent waiting for delivery capacity",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wirecomb_run_duration_seconds",
			Help:    "Duration of ingestion runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"profile"},
	)
)
