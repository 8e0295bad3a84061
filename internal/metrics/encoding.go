// Package metrics provides Prometheus metrics for the embedding pipeline.
// It tracks encode calls, latencies, text throughput, and cache hits.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "uniem"

// LatencyBuckets defines histogram buckets for encode latency (in seconds).
// Remote embedding APIs typically answer within a few seconds.
var LatencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5,
	1.0, 2.0, 3.0, 5.0, 10.0, 20.0, 30.0, 60.0,
}

var (
	// EncodeRequests counts backend encode calls.
	EncodeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_requests_total",
			Help:      "Total number of backend encode calls",
		},
		[]string{"backend", "model", "status"},
	)

	// EncodeLatency tracks backend encode call latency.
	EncodeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_latency_seconds",
			Help:      "Backend encode call latency in seconds",
			Buckets:   LatencyBuckets,
		},
		[]string{"backend", "model"},
	)

	// TextsEncoded counts texts sent to a backend.
	TextsEncoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "texts_encoded_total",
			Help:      "Total number of texts sent to a backend",
		},
		[]string{"backend", "model"},
	)

	// CacheRequests counts vector cache lookups by outcome.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Total number of vector cache lookups",
		},
		[]string{"backend", "model", "outcome"},
	)

	// Retries counts retried encode calls.
	Retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_retries_total",
			Help:      "Total number of retried encode calls",
		},
		[]string{"backend", "model"},
	)
)

// Cache lookup outcomes.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Statuses for EncodeRequests.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
