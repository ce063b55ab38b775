// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package api provides the HTTP surface of the recommendation service
// using the Chi router.
package api

import (
	"net/http"

	"github.com/SivanLackrif/shmali/internal/recommend"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	engine  *recommend.Engine
	store   recommend.SessionStore
	dataset recommend.DatasetSource // nil when the local source is disabled
}

// NewHandler creates the handler set.
func NewHandler(engine *recommend.Engine, store recommend.SessionStore, dataset recommend.DatasetSource) *Handler {
	return &Handler{
		engine:  engine,
		store:   store,
		dataset: dataset,
	}
}

// Turn handles POST /api/v1/turn: one conversation turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply := h.engine.HandleTurn(r.Context(), req.UserID, req.Text, req.Continuation)
	respondJSON(w, r, http.StatusOK, TurnResponse{Reply: reply}, nil)
}

// Reset handles POST /api/v1/reset: clears a user's session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply := h.engine.Reset(r.Context(), req.UserID)
	respondJSON(w, r, http.StatusOK, TurnResponse{Reply: reply}, nil)
}

// HealthLive handles GET /api/v1/health/live: process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"}, nil)
}

// HealthReady handles GET /api/v1/health/ready: readiness to serve.
// The service is ready as soon as the engine is wired; source outages
// degrade answers rather than readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Sessions: h.store.Len(),
	}
	if d, ok := h.dataset.(interface{ Len() int }); ok && h.dataset != nil {
		resp.Dataset = d.Len()
	}
	respondJSON(w, r, http.StatusOK, resp, nil)
}
