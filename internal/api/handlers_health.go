// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package api

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string  `json:"status"`
	DatabaseConnected bool    `json:"database_connected"`
	SyncBreaker       string  `json:"sync_breaker,omitempty"`
	WSClients         int     `json:"ws_clients"`
	Uptime            float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. An unreachable database or an open sync
// breaker reports degraded; the endpoint itself always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{
		Status:            "healthy",
		DatabaseConnected: h.Items.Ping(ctx) == nil,
		WSClients:         h.Hub.GetClientCount(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.Syncer != nil {
		status.SyncBreaker = h.Syncer.BreakerState()
	}
	if !status.DatabaseConnected || status.SyncBreaker == "open" {
		status.Status = "degraded"
	}
	respondData(w, http.StatusOK, status, start, false)
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HealthReady handles GET /api/v1/health/ready: 503 until the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.Items.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database unavailable", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
