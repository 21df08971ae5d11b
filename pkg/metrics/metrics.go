package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_extractions_total",
			Help: "Total number of image extractions by outcome and winning strategy.",
		},
		[]string{"status", "method"}, // status: success, failure
	)

	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_extraction_attempts_total",
			Help: "Total number of single extraction attempts, including retries.",
		},
		[]string{"outcome"}, // success, transport, no_image
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_extraction_cache_total",
			Help: "Cache lookups for extraction results.",
		},
		[]string{"result"}, // hit, miss
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "page_fetch_duration_seconds",
			Help:    "Duration of outbound page fetches.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"domain"},
	)
)
