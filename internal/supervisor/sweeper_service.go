// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package supervisor

import (
	"context"
	"time"

	"github.com/SivanLackrif/shmali/internal/logging"
)

// Sweepable is the part of the session store the sweeper needs.
type Sweepable interface {
	Sweep() int
}

// SweeperService periodically evicts expired sessions from the store.
type SweeperService struct {
	store    Sweepable
	interval time.Duration
}

// NewSweeperService sweeps store every interval.
func NewSweeperService(store Sweepable, interval time.Duration) *SweeperService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweeperService{
		store:    store,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := s.store.Sweep(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("swept expired sessions")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *SweeperService) String() string {
	return "session-sweeper"
}
