// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status         string   `json:"status"`
	StoreConnected bool     `json:"store_connected"`
	Algorithms     []string `json:"algorithms"`
	Uptime         float64  `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. It pings the rating store and answers
// 503 when the store is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	connected := h.store.Ping(ctx) == nil
	status := HealthStatus{
		Status:         "healthy",
		StoreConnected: connected,
		Algorithms:     h.algorithmNames(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if !connected {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).SuccessWithStatus(code, status)
}

// HealthLive handles GET /api/v1/health/live. It answers 200 while the
// process is up, regardless of the store.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}
