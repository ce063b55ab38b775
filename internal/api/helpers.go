// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/middleware"
	"github.com/SivanLackrif/shmali/internal/validation"
)

// maxBodyBytes caps request body size.
const maxBodyBytes = 64 * 1024

// sanitizeLogValue removes control characters from strings to prevent
// log injection through attacker-controlled values.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")

	respStatus := "success"
	if apiErr != nil {
		respStatus = "error"
	}
	response := &APIResponse{
		Status: respStatus,
		Data:   data,
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
		Error: apiErr,
	}

	body, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, r, status, nil, &APIError{Code: code, Message: message})
}

// decodeAndValidate parses a JSON body into v and runs struct validation.
// A false return means the error response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return false
	}

	if validationErr := validation.ValidateStruct(v); validationErr != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), nil)
		return false
	}

	return true
}
