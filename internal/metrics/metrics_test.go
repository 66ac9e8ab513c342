// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful GET request",
			method:     "GET",
			endpoint:   "/api/recommend",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "successful POST view",
			method:     "POST",
			endpoint:   "/api/view",
			statusCode: "204",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "not found request",
			method:     "GET",
			endpoint:   "/api/unknown",
			statusCode: "404",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "internal server error",
			method:     "POST",
			endpoint:   "/api/model/train",
			statusCode: "500",
			duration:   500 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/api/recommend",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the request - should not panic
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestTrackActiveRequest tests active request tracking
func TestTrackActiveRequest(t *testing.T) {
	tests := []struct {
		name string
		inc  bool
	}{
		{
			name: "increment active request",
			inc:  true,
		},
		{
			name: "decrement active request",
			inc:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Track active request - should not panic
			TrackActiveRequest(tt.inc)
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true) // Request starts
	}

	for i := 0; i < 5; i++ {
		TrackActiveRequest(false) // Request ends
	}

	for i := 0; i < 3; i++ {
		TrackActiveRequest(true)
	}

	for i := 0; i < 8; i++ {
		TrackActiveRequest(false)
	}
}

// TestRecordRecommend tests recommendation request metric recording
func TestRecordRecommend(t *testing.T) {
	tests := []struct {
		name           string
		part           string
		outcome        string
		candidateCount int
	}{
		{
			name:           "ok with candidates",
			part:           "movie",
			outcome:        "ok",
			candidateCount: 42,
		},
		{
			name:           "ok with no candidates",
			part:           "episode",
			outcome:        "ok",
			candidateCount: 0,
		},
		{
			name:           "error outcome",
			part:           "movie",
			outcome:        "error",
			candidateCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRecommend(tt.part, tt.outcome, tt.candidateCount)
		})
	}
}

// TestRecordView tests view metric recording
func TestRecordView(t *testing.T) {
	parts := []string{"movie", "episode", "track"}

	for _, part := range parts {
		t.Run(part, func(t *testing.T) {
			RecordView(part)
		})
	}
}

// TestRecordTraining tests training run metric recording
func TestRecordTraining(t *testing.T) {
	tests := []struct {
		name     string
		outcome  string
		duration time.Duration
	}{
		{"trained", "trained", 2 * time.Second},
		{"skipped", "skipped", time.Millisecond},
		{"failed", "failed", 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordTraining(tt.outcome, tt.duration)
		})
	}
}

// TestSetRankedListSize tests ranked list size gauge updates
func TestSetRankedListSize(t *testing.T) {
	tests := []struct {
		part string
		list string
		size int
	}{
		{"movie", "near", 10},
		{"movie", "top", 256},
		{"episode", "popular", 0},
		{"episode", "recent", 256},
	}

	for _, tt := range tests {
		t.Run(tt.part+"_"+tt.list, func(t *testing.T) {
			SetRankedListSize(tt.part, tt.list, tt.size)
		})
	}
}

// TestConcurrentMetricRecording tests thread safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 100
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/recommend", "200", time.Duration(j)*time.Millisecond)
			}
		}(i)
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}(i)
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordRecommend("movie", "ok", j)
				RecordView("movie")
			}
		}(i)
	}

	wg.Wait()
}

// TestMetricLabels verifies that metrics have proper labels configured
func TestMetricLabels(t *testing.T) {
	APIRequestsTotal.WithLabelValues("GET", "/api/recommend", "200").Inc()
	APIRequestsTotal.WithLabelValues("POST", "/api/view", "500").Inc()

	RecommendRequestsTotal.WithLabelValues("movie", "ok").Inc()
	RecommendRequestsTotal.WithLabelValues("movie", "error").Inc()

	ViewsRecordedTotal.WithLabelValues("movie").Inc()

	TrainingRunsTotal.WithLabelValues("trained").Inc()
	TrainingRunsTotal.WithLabelValues("skipped").Inc()
	TrainingRunsTotal.WithLabelValues("failed").Inc()

	RankedListSize.WithLabelValues("movie", "near").Set(10)
}

// TestAppMetrics tests application-level metrics
func TestAppMetrics(t *testing.T) {
	AppInfo.WithLabelValues("1.0", "go1.25.4").Set(1)

	AppUptime.Set(3600) // 1 hour
	AppUptime.Add(60)   // Add 1 minute
}

// TestMetricsRegistration verifies all metrics are properly registered
func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		RecommendRequestsTotal,
		RecommendCandidateCount,
		ViewsRecordedTotal,
		TrainingRunsTotal,
		TrainingDuration,
		RankedListSize,
		AppInfo,
		AppUptime,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/recommend", "200", time.Millisecond)
	RecordRecommend("movie", "ok", 10)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

// Benchmark tests for metrics performance

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/recommend", "200", 25*time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}

func BenchmarkRecordRecommend(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordRecommend("movie", "ok", 10)
	}
}

func BenchmarkRecordTraining(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordTraining("trained", 2*time.Second)
	}
}
