// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_searches_started_total",
			Help: "Total number of search requests accepted",
		},
	)

	SearchesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_searches_completed_total",
			Help: "Total number of searches that reached the Done state",
		},
	)

	SearchesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_searches_failed_total",
			Help: "Total number of searches that reached the Failed state",
		},
		[]string{"error_code"},
	)

	MessagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scout_channel_messages_fetched_total",
			Help: "Total number of raw messages fetched per source channel",
		},
		[]string{"channel"},
	)

	ListingsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_listings_extracted_total",
			Help: "Total number of messages parsed into complete listing records",
		},
	)

	ListingsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scout_listings_skipped_total",
			Help: "Total number of messages dropped as non-listings",
		},
	)

	InferenceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "scout_inference_request_duration_seconds",
			Help: "Duration of inference round trips in seconds",
		},
		[]string{"operation"},
	)

	MatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scout_matches_returned",
			Help:    "Number of matched listings per completed search",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		},
	)
)
