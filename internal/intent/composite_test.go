// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/SivanLackrif/shmali/internal/recommend"
)

type scriptedAnalyzer struct {
	req   recommend.StructuredRequest
	err   error
	calls int
}

func (s *scriptedAnalyzer) Analyze(_ context.Context, _ string) (recommend.StructuredRequest, error) {
	s.calls++
	if s.err != nil {
		return recommend.StructuredRequest{}, s.err
	}
	return s.req, nil
}

func TestCompositePrefersPrimary(t *testing.T) {
	t.Parallel()

	primary := &scriptedAnalyzer{req: recommend.StructuredRequest{Topics: []string{"היסטוריה"}}}
	composite := NewComposite(primary)

	req, err := composite.Analyze(context.Background(), "פודקאסט על היסטוריה")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
	if len(req.Topics) != 1 || req.Topics[0] != "היסטוריה" {
		t.Errorf("Topics = %v, want the primary's answer", req.Topics)
	}
}

func TestCompositeFallsBackOnError(t *testing.T) {
	t.Parallel()

	primary := &scriptedAnalyzer{err: errors.New("quota exceeded")}
	composite := NewComposite(primary)

	req, err := composite.Analyze(context.Background(), "פודקאסט על ספורט")
	if err != nil {
		t.Fatalf("Analyze must not fail when the fallback can answer: %v", err)
	}
	if len(req.Topics) != 1 || req.Topics[0] != "ספורט" {
		t.Errorf("Topics = %v, want the heuristic answer", req.Topics)
	}
}

func TestCompositeWithoutPrimary(t *testing.T) {
	t.Parallel()

	composite := NewComposite(nil)

	req, err := composite.Analyze(context.Background(), "פודקאסט על כדורסל")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(req.Topics) != 1 || req.Topics[0] != "ספורט" {
		t.Errorf("Topics = %v, want the heuristic answer", req.Topics)
	}
}
