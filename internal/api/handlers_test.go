// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/SivanLackrif/shmali/internal/config"
	"github.com/SivanLackrif/shmali/internal/recommend"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, _ string) (recommend.StructuredRequest, error) {
	return recommend.StructuredRequest{
		Topics:   []string{"ספורט"},
		Keywords: []string{"ספורט"},
		Language: recommend.LanguageHebrew,
	}, nil
}

type stubDataset struct {
	items []recommend.CatalogItem
}

func (s *stubDataset) All() []recommend.CatalogItem { return s.items }
func (s *stubDataset) Len() int                     { return len(s.items) }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dataset := &stubDataset{items: []recommend.CatalogItem{
		{ID: "1", Name: "שיחת ספורט", Publisher: "רדיו", Description: "הכל על ספורט", Languages: []string{"he"}, Episodes: 40, URL: "https://example.com/1"},
	}}
	scorer := recommend.NewScorer(0.7, 0.3, 0.7, 0.3)
	aggregator := recommend.NewAggregator(scorer, nil, dataset, 5, 0.3)
	store := recommend.NewMemoryStore(time.Hour)
	engine := recommend.NewEngine(recommend.NewClassifier(nil), stubAnalyzer{}, aggregator, store, 5)

	handler := NewHandler(engine, store, dataset)
	return NewRouter(handler, config.APIConfig{
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
	})
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestTurnEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := postJSON(t, router, "/api/v1/turn", `{"user_id":"u1","text":"רוצה לשמוע פודקאסט על ספורט"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" {
		t.Errorf("envelope status = %q, want success", resp.Status)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("envelope missing a request id")
	}

	data, _ := resp.Data.(map[string]interface{})
	reply, _ := data["reply"].(string)
	if !strings.Contains(reply, "שיחת ספורט") {
		t.Errorf("reply missing the recommendation: %q", reply)
	}
}

func TestTurnEndpointValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	tests := []struct {
		name string
		body string
	}{
		{"missing user id", `{"text":"פודקאסט על ספורט"}`},
		{"missing text", `{"user_id":"u1"}`},
		{"text too long", `{"user_id":"u1","text":"` + strings.Repeat("א", 1001) + `"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := postJSON(t, router, "/api/v1/turn", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
			}
		})
	}
}

func TestTurnEndpointInvalidJSON(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := postJSON(t, router, "/api/v1/turn", "{not json")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil || resp.Error.Code != "INVALID_JSON" {
		t.Errorf("error = %+v, want INVALID_JSON", resp.Error)
	}
}

func TestResetEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := postJSON(t, router, "/api/v1/reset", `{"user_id":"u1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]interface{})
	reply, _ := data["reply"].(string)
	if !strings.Contains(reply, "השיחה אופסה") {
		t.Errorf("reply = %q, want the reset confirmation", reply)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestHealthReadyReportsCounts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	// One turn creates a session.
	postJSON(t, router, "/api/v1/turn", `{"user_id":"u1","text":"רוצה לשמוע פודקאסט על ספורט"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := decodeEnvelope(t, rec)
	data, _ := resp.Data.(map[string]interface{})
	if sessions, _ := data["sessions"].(float64); sessions != 1 {
		t.Errorf("sessions = %v, want 1", data["sessions"])
	}
	if datasetLen, _ := data["dataset_items"].(float64); datasetLen != 1 {
		t.Errorf("dataset_items = %v, want 1", data["dataset_items"])
	}
}

func TestRequestIDHeaderPropagates(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/turn", strings.NewReader(`{"user_id":"u1","text":"רוצה לשמוע פודקאסט על ספורט"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want the caller's id echoed", got)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Metadata.RequestID != "fixed-id" {
		t.Errorf("envelope request id = %q, want fixed-id", resp.Metadata.RequestID)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line\\x0abreak"},
		{"tab\there", "tab\\x09here"},
		{"עברית", "עברית"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
