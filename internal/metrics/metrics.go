package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReviewsTotal counts completed review actions, labeled by kind and outcome.
	ReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_reviews_total",
		Help: "The total number of review actions processed",
	}, []string{"kind", "outcome"}) // kind: review, refine; outcome: ok, fallback, degraded

	// ReviewDuration measures end-to-end review latency per provider.
	ReviewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewer_review_duration_seconds",
		Help:    "Time taken to complete a review action",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// GatewayErrors counts model provider failures, labeled by provider.
	GatewayErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_gateway_errors_total",
		Help: "The total number of model gateway failures",
	}, []string{"provider"})

	// NormalizationsTotal counts normalizer outcomes.
	NormalizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_normalizations_total",
		Help: "The total number of model responses normalized",
	}, []string{"outcome"}) // outcome: strict, repaired, degraded

	// ExtractionsTotal counts file text extractions, labeled by file type and status.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_extractions_total",
		Help: "The total number of resume file extractions",
	}, []string{"type", "status"}) // status: success, error, unsupported

	// RequestsDropped counts requests rejected at the concurrency gate.
	RequestsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewer_requests_dropped_total",
		Help: "The total number of requests rejected because the service was busy",
	}, []string{"path"})

	// HistorySize tracks the number of entries currently in the history store.
	HistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewer_history_entries",
		Help: "Number of session snapshots currently stored",
	})
)
