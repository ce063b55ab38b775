// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package metrics provides Prometheus instrumentation for Shmali.
//
// Instrumented areas:
//   - Recommendation turns (outcome, latency)
//   - Relevance classification (tier, verdict)
//   - External source queries (Spotify catalog, local dataset)
//   - Session lifecycle (active sessions, rebuilds, exhaustions)
//   - Circuit breaker state for outbound APIs
//   - HTTP API request latency and throughput
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation turn metrics

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shmali_turn_duration_seconds",
			Help:    "Duration of a full recommendation turn in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "delivered", "exhausted", "off_topic", "not_hebrew", "error"
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_turns_total",
			Help: "Total number of recommendation turns processed",
		},
		[]string{"outcome"},
	)

	// Relevance classifier metrics

	ClassifierDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_classifier_decisions_total",
			Help: "Relevance classifier decisions by tier and verdict",
		},
		[]string{"tier", "verdict"}, // tier: "rule", "semantic", "fallback"; verdict: "in_domain", "out_of_domain"
	)

	// Source query metrics

	SourceQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shmali_source_query_duration_seconds",
			Help:    "Duration of candidate source queries in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"}, // "spotify", "dataset"
	)

	SourceQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_source_query_errors_total",
			Help: "Total number of failed candidate source queries",
		},
		[]string{"source"},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shmali_candidate_pool_size",
			Help:    "Size of the deduplicated candidate pool after aggregation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 40, 80},
		},
	)

	// Session metrics

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shmali_active_sessions",
			Help: "Current number of live user sessions",
		},
	)

	SessionRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_session_rebuilds_total",
			Help: "Candidate pool rebuilds by trigger",
		},
		[]string{"trigger"}, // "new_session", "topic_change", "exhausted", "reset"
	)

	SessionExhaustions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shmali_session_exhaustions_total",
			Help: "Number of sessions that ran out of unseen recommendations",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shmali_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shmali_circuit_breaker_requests_total",
			Help: "Requests through circuit breakers by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// HTTP API metrics

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shmali_api_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shmali_api_active_requests",
			Help: "Current number of in-flight HTTP API requests",
		},
	)
)

// RecordTurn records the outcome and duration of one recommendation turn.
func RecordTurn(outcome string, duration time.Duration) {
	TurnsTotal.WithLabelValues(outcome).Inc()
	TurnDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordSourceQuery records a source query duration and optional failure.
func RecordSourceQuery(source string, duration time.Duration, err error) {
	SourceQueryDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceQueryErrors.WithLabelValues(source).Inc()
	}
}

// RecordAPIRequest records an HTTP API request for the metrics middleware.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
