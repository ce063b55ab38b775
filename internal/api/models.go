// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package api

import "time"

// APIResponse is the envelope for all JSON responses.
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error description.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TurnRequest is the payload for POST /api/v1/turn.
type TurnRequest struct {
	// UserID is a stable conversation identifier chosen by the caller.
	UserID string `json:"user_id" validate:"required,max=128"`

	// Text is the user's message.
	Text string `json:"text" validate:"required,max=1000"`

	// Continuation asks for another recommendation on the current topic
	// regardless of the message wording.
	Continuation bool `json:"continuation"`
}

// TurnResponse carries the Hebrew reply for one turn.
type TurnResponse struct {
	Reply string `json:"reply"`
}

// ResetRequest is the payload for POST /api/v1/reset.
type ResetRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions,omitempty"`
	Dataset  int    `json:"dataset_items,omitempty"`
}
