// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics, labelled by backend ("badger", "neo4j") and unit of
	// work ("view", "update", "aggregate").
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showgraph_store_op_duration_seconds",
			Help:    "Duration of graph store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showgraph_store_op_errors_total",
			Help: "Total number of failed graph store operations",
		},
		[]string{"backend", "operation"},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showgraph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showgraph_http_active_requests",
			Help: "Number of HTTP requests currently in flight",
		},
	)

	// Recommendation metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showgraph_recommendations_served_total",
			Help: "Total recommendations served, by strategy that produced them",
		},
		[]string{"strategy"}, // "co-like", "age-band", "none"
	)

	RecommendationAgeDelta = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showgraph_recommendation_age_delta",
			Help:    "Age band width that satisfied fallback recommendations",
			Buckets: []float64{2, 4, 8, 16, 32, 48},
		},
	)

	// Bulk import metrics
	ImportRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showgraph_import_records_total",
			Help: "Total CSV records submitted during bulk import",
		},
		[]string{"kind", "outcome"}, // kind: "person"|"show"|"like", outcome: "accepted"|"rejected"|"failed"
	)

	// Badger GC metrics
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showgraph_store_gc_runs_total",
			Help: "Total value log GC attempts, by outcome",
		},
		[]string{"outcome"}, // "rewritten", "noop", "error"
	)
)

// ObserveStoreOp records duration and error outcome for one store unit
// of work.
func ObserveStoreOp(backend, operation string, start time.Time, err error) {
	StoreOpDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(backend, operation).Inc()
	}
}

// ObserveHTTPRequest records one completed HTTP request. The endpoint
// should be the route pattern, never the raw path, to bound cardinality.
func ObserveHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, endpoint, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordRecommendation counts a served recommendation response and, for
// fallback results, the age delta that produced it.
func RecordRecommendation(strategy string, ageDelta int) {
	RecommendationsServed.WithLabelValues(strategy).Inc()
	if ageDelta > 0 {
		RecommendationAgeDelta.Observe(float64(ageDelta))
	}
}

// RecordImport counts one bulk-import record by kind and outcome.
func RecordImport(kind, outcome string) {
	ImportRecordsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordGCRun counts one value log GC attempt.
func RecordGCRun(rewritten bool, err error) {
	switch {
	case err != nil:
		StoreGCRuns.WithLabelValues("error").Inc()
	case rewritten:
		StoreGCRuns.WithLabelValues("rewritten").Inc()
	default:
		StoreGCRuns.WithLabelValues("noop").Inc()
	}
}
