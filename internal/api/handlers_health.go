// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"
	"time"
)

// healthStatus is the body of GET /healthz.
type healthStatus struct {
	Status         string    `json:"status"`
	UptimeSeconds  float64   `json:"uptime_seconds"`
	ModelVersion   uint64    `json:"model_version"`
	LastTrainedAt  time.Time `json:"last_trained_at,omitempty"`
	TrainingActive bool      `json:"training_active"`
	Metrics        struct {
		Requests uint64 `json:"requests"`
		Views    uint64 `json:"views"`
		Errors   uint64 `json:"errors"`
		Trains   uint64 `json:"trains"`
	} `json:"metrics"`
}

var startTime = time.Now()

// Health handles GET /healthz: reports storage reachability and the
// engine's running counters. Not part of spec.md's HTTP surface table,
// but every deployable service in this codebase carries one.
//
//	@Summary	Report service and storage health
//	@Router		/healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, _, err := h.store.FindItem(r.Context(), "__healthz__", "__probe__")

	status := healthStatus{
		Status:        "healthy",
		UptimeSeconds: time.Since(startTime).Seconds(),
	}
	if err != nil {
		status.Status = "degraded"
	}

	trainStatus := h.engine.GetStatus()
	status.ModelVersion = trainStatus.ModelVersion
	status.LastTrainedAt = trainStatus.LastTrainedAt
	status.TrainingActive = trainStatus.InProgress

	metrics := h.engine.GetMetrics()
	status.Metrics.Requests = metrics.RequestCount
	status.Metrics.Views = metrics.ViewCount
	status.Metrics.Errors = metrics.ErrorCount
	status.Metrics.Trains = metrics.TrainCount

	rw := NewResponseWriter(w, r)
	if status.Status != "healthy" {
		rw.ServiceUnavailable("storage backend unreachable")
		return
	}
	rw.Success(status)
}
