// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

// Package metrics holds the Prometheus instruments shared across cragrec.
//
// Instruments are registered on the default registry at init through
// promauto; the serve command exposes them at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeAbsentUser = "absent_user"
	OutcomeEmpty      = "empty"
	OutcomeError      = "error"
)

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by algorithm and outcome",
		},
		[]string{"algorithm", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation latency including the store read",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"algorithm"},
	)

	RecommendNeighbors = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_neighbors",
			Help:    "Neighbours kept after similarity thresholding per request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	RecommendDegenerateSimilarities = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_degenerate_similarities_total",
			Help: "Similarity computations skipped because a rating vector had zero norm",
		},
	)

	// Rating Store Metrics
	StoreQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_queries_total",
			Help: "Total number of rating store queries",
		},
		[]string{"operation", "status"}, // status: "success", "error", "rejected"
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of rating store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_rows_read_total",
			Help: "Rows scanned from rating stores",
		},
		[]string{"operation"},
	)

	StoreUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_up",
			Help: "Whether the last background ping of a rating store succeeded (1) or failed (0)",
		},
		[]string{"store"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Evaluation Metrics
	EvaluateOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluate_outcomes_total",
			Help: "Recommendations classified against ground truth",
		},
		[]string{"algorithm", "outcome"}, // outcome: "positive", "negative", "unknown"
	)

	EvaluateUserFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluate_user_failures_total",
			Help: "Sampled users whose evaluation failed and was recorded in the report",
		},
		[]string{"algorithm"},
	)

	// API Metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordRecommendation records one recommendation request.
func RecordRecommendation(algorithm, outcome string, duration time.Duration) {
	RecommendRequests.WithLabelValues(algorithm, outcome).Inc()
	RecommendDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordStoreQuery records a store query. rejected marks calls refused by
// an open circuit breaker, which never reached the database.
func RecordStoreQuery(operation string, duration time.Duration, rows int, err error, rejected bool) {
	status := "success"
	switch {
	case rejected:
		status = "rejected"
	case err != nil:
		status = "error"
	}
	StoreQueries.WithLabelValues(operation, status).Inc()
	if rejected {
		return
	}
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if rows > 0 {
		StoreRowsRead.WithLabelValues(operation).Add(float64(rows))
	}
}

// RecordAPIRequest records an HTTP request against its route pattern.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
