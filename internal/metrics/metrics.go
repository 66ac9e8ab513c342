// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package instruments:
// - API endpoint latency, throughput, and active-request count
// - Recommendation engine activity: requests served, views recorded,
//   training runs, and ranked-list cardinality per partition

var (
	// API Endpoint Metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics

	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of POST /api/recommend calls, by partition and outcome",
		},
		[]string{"part", "outcome"},
	)

	RecommendCandidateCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidate_count",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
		},
	)

	ViewsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_views_recorded_total",
			Help: "Total number of views recorded via POST/GET /api/view",
		},
		[]string{"part"},
	)

	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of training ticks, by outcome (trained, skipped, failed)",
		},
		[]string{"outcome"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of a training tick in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RankedListSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_ranked_list_size",
			Help: "Cardinality of a ranked list after its last compaction",
		},
		[]string{"part", "list"},
	)

	// System Metrics

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommend records the outcome of a POST /api/recommend call.
func RecordRecommend(part, outcome string, candidateCount int) {
	RecommendRequestsTotal.WithLabelValues(part, outcome).Inc()
	RecommendCandidateCount.Observe(float64(candidateCount))
}

// RecordView records a recorded view for part.
func RecordView(part string) {
	ViewsRecordedTotal.WithLabelValues(part).Inc()
}

// RecordTraining records one training tick's outcome and duration.
func RecordTraining(outcome string, duration time.Duration) {
	TrainingRunsTotal.WithLabelValues(outcome).Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// SetRankedListSize records the cardinality of one ranked list after
// compaction, for observing near/top/popular list growth over time.
func SetRankedListSize(part, list string, size int) {
	RankedListSize.WithLabelValues(part, list).Set(float64(size))
}
