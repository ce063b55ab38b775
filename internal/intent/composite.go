// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package intent

import (
	"context"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/recommend"
)

// Composite tries the semantic analyzer first and falls back to the
// deterministic heuristics on any failure, so intent analysis never
// blocks a turn.
type Composite struct {
	primary  recommend.Analyzer // nil when semantic analysis is disabled
	fallback *Fallback
}

// NewComposite chains primary (may be nil) with the heuristic fallback.
func NewComposite(primary recommend.Analyzer) *Composite {
	return &Composite{
		primary:  primary,
		fallback: NewFallback(),
	}
}

// Analyze extracts a structured request, degrading to heuristics when
// the semantic tier is unavailable or fails.
func (c *Composite) Analyze(ctx context.Context, text string) (recommend.StructuredRequest, error) {
	if c.primary != nil {
		req, err := c.primary.Analyze(ctx, text)
		if err == nil {
			return req, nil
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("semantic intent analysis failed, using heuristics")
	}
	return c.fallback.Analyze(ctx, text)
}
