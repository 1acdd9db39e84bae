package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "concord"

// Search status label values.
const (
	StatusSuccess    = "success"
	StatusIncomplete = "incomplete"
	StatusError      = "error"
)

// Stream and search metrics.
var (
	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Decoded stream events by type",
		},
		[]string{"type"},
	)

	StreamFramesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_frames_dropped_total",
			Help:      "Malformed stream frames skipped by the decoder",
		},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Consensus searches by final status",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of a consensus search, request to result",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_requests_total",
			Help:      "Requests to the consensus engine by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		StreamEventsTotal,
		StreamFramesDroppedTotal,
		SearchesTotal,
		SearchDuration,
		EngineRequestsTotal,
	)
}
