// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the HTTP API surface and the recommendation engine
using the Prometheus client library, exposing metrics for monitoring request
throughput, latency, and recommendation/training activity.

# Overview

The package provides metrics for:
  - API request latency, throughput, and active-request count
  - Recommendation requests served, by partition and outcome
  - Views recorded per partition
  - Training run outcomes and duration
  - Ranked-list cardinality per partition and list

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total number of API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: API request duration (histogram)
    Labels: method, endpoint
  - api_active_requests: Current number of active API requests (gauge)

Recommendation Engine Metrics:
  - recommend_requests_total: Total POST /api/recommend calls (counter)
    Labels: part, outcome
  - recommend_candidate_count: Candidates scored per request (histogram)
  - recommend_views_recorded_total: Views recorded via POST/GET /api/view (counter)
    Labels: part
  - recommend_training_runs_total: Training ticks, by outcome (counter)
    Labels: outcome (trained, skipped, failed)
  - recommend_training_duration_seconds: Duration of a training tick (histogram)
  - recommend_ranked_list_size: Cardinality of a ranked list after compaction (gauge)
    Labels: part, list

System Metrics:
  - app_info: Application version and build information (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Application uptime in seconds (gauge)

# Usage Example

Recording API request metrics:

	func MetricsMiddleware(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()
	        metrics.TrackActiveRequest(true)
	        defer metrics.TrackActiveRequest(false)

	        rw := &metricsResponseWriter{ResponseWriter: w, statusCode: 200}
	        next.ServeHTTP(rw, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), time.Since(start))
	    })
	}

Recording recommendation activity:

	result, err := engine.Recommend(ctx, req)
	if err != nil {
	    metrics.RecordRecommend(req.Part, "error", 0)
	    return err
	}
	metrics.RecordRecommend(req.Part, "ok", len(result.Candidates))

Recording training outcomes:

	start := time.Now()
	err := engine.Train(ctx)
	switch {
	case errors.As(err, &skipped):
	    metrics.RecordTraining("skipped", time.Since(start))
	case err != nil:
	    metrics.RecordTraining("failed", time.Since(start))
	default:
	    metrics.RecordTraining("trained", time.Since(start))
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'cartographus'
	    static_configs:
	      - targets: ['localhost:3857']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Example PromQL Queries

	# API request rate
	rate(api_requests_total[5m])

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Recommendation error rate
	rate(recommend_requests_total{outcome="error"}[5m])

	# Training failure rate
	rate(recommend_training_runs_total{outcome="failed"}[5m])

	# Ranked-list growth for a partition
	recommend_ranked_list_size{part="movie"}

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent
use from multiple goroutines. The Prometheus client library handles
synchronization internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels are normalized (no query parameters)
  - The part label is bounded by the number of configured partitions
  - Outcome labels are limited to predefined constants

# See Also

  - internal/middleware: HTTP middleware that records API metrics
  - internal/recommend: Recommendation engine. RecordRecommend, RecordView,
    RecordTraining and SetRankedListSize are not called from it or from any
    other package, so those series stay empty
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
  - https://prometheus.io/docs/practices/instrumentation/: Instrumentation guide
*/
package metrics
