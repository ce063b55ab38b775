// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"sync"
	"time"

	"github.com/SivanLackrif/shmali/internal/metrics"
)

// SessionStore persists per-user conversation state. Implementations
// must be safe for concurrent use.
type SessionStore interface {
	// Get returns the session for userID, or false if none exists.
	Get(userID string) (*Session, bool)

	// Put stores a session, refreshing its activity timestamp.
	Put(s *Session)

	// Delete removes a user's session.
	Delete(userID string)

	// Len returns the number of live sessions.
	Len() int
}

// MemoryStore is an in-memory SessionStore with TTL eviction. Expired
// sessions are removed lazily on Get and in bulk by Sweep, which a
// background service calls periodically.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewMemoryStore returns a store that evicts sessions idle longer than ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Get returns the session for userID. Expired sessions are evicted and
// reported as missing.
func (m *MemoryStore) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(s.LastActive) > m.ttl {
		m.Delete(userID)
		return nil, false
	}
	return s, true
}

// Put stores s and refreshes its activity timestamp.
func (m *MemoryStore) Put(s *Session) {
	s.LastActive = time.Now()

	m.mu.Lock()
	m.sessions[s.UserID] = s
	size := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(size))
}

// Delete removes a user's session.
func (m *MemoryStore) Delete(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	size := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(size))
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts all expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	size := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(size))
	return removed
}
