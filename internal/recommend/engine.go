// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/metrics"
)

// hebrewRatioThreshold is the minimum share of Hebrew characters for a
// message to be treated as Hebrew.
const hebrewRatioThreshold = 0.2

// moreKeywords signal a request for another recommendation on the same topic.
var moreKeywords = []string{"עוד", "המלצה נוספת", "עוד המלצה", "הבא", "next"}

// Engine runs the full recommendation pipeline for conversation turns.
// Turns for the same user are serialized; turns for different users run
// concurrently.
type Engine struct {
	classifier *Classifier
	analyzer   Analyzer
	aggregator *Aggregator
	store      SessionStore
	formatter  Formatter
	maxHistory int

	mu        sync.Mutex
	userLocks map[string]*userLock
}

// userLock is a per-user mutex with a waiter count so idle entries can
// be evicted from the lock map instead of accumulating forever.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine wires the pipeline together.
func NewEngine(classifier *Classifier, analyzer Analyzer, aggregator *Aggregator, store SessionStore, maxHistory int) *Engine {
	return &Engine{
		classifier: classifier,
		analyzer:   analyzer,
		aggregator: aggregator,
		store:      store,
		maxHistory: maxHistory,
		userLocks:  make(map[string]*userLock),
	}
}

// HandleTurn processes one user message and returns the Hebrew reply.
// It never panics and never returns an empty reply: unexpected failures
// produce a generic apology so the conversation can continue.
func (e *Engine) HandleTurn(ctx context.Context, userID, text string, continuation bool) (reply string) {
	start := time.Now()
	outcome := "delivered"
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().
				Interface("panic", r).
				Str("user_id", userID).
				Msg("turn panicked")
			outcome = "error"
			reply = ErrorMessage
		}
		metrics.RecordTurn(outcome, time.Since(start))
	}()

	unlock := e.lockUser(userID)
	defer unlock()

	isMore := continuation || wantsMore(text)

	var req StructuredRequest
	session, hasSession := e.store.Get(userID)

	if isMore {
		if !hasSession {
			outcome = "no_history"
			return NoHistoryMessage
		}
		last, ok := session.LastRequest()
		if !ok {
			outcome = "no_history"
			return NoHistoryMessage
		}
		req = last
	} else {
		// New searches must be in Hebrew; continuation keywords like
		// "next" are exempt.
		if !looksHebrew(text) {
			outcome = "not_hebrew"
			return NotHebrewMessage
		}

		classification := e.classifier.Classify(ctx, text)
		if classification.ShouldReject() {
			logging.Ctx(ctx).Debug().
				Str("user_id", userID).
				Str("reason", classification.Reason).
				Str("tier", classification.Tier).
				Msg("message rejected as off-topic")
			outcome = "off_topic"
			return e.formatter.OutOfDomainReply(text)
		}

		analyzed, err := e.analyzer.Analyze(ctx, text)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("intent analysis failed")
			outcome = "error"
			return ErrorMessage
		}
		req = analyzed
	}

	if !hasSession {
		session = NewSession(userID)
	}

	rebuild, trigger := e.needsRebuild(session, req, hasSession, isMore)
	if rebuild {
		logging.Ctx(ctx).Info().
			Str("user_id", userID).
			Str("trigger", trigger).
			Strs("topics", req.Topics).
			Msg("rebuilding candidate pool")
		metrics.SessionRebuilds.WithLabelValues(trigger).Inc()

		session.Pool = e.aggregator.BuildPool(ctx, req)
		session.Shown = make(map[string]bool)
	}

	// History is recorded only after the rebuild, so a panicking source
	// never leaves a stored session with history but no matching pool.
	if !isMore {
		session.RecordRequest(req, e.maxHistory)
	}

	item, ok := session.NextUnseen()
	if !ok {
		e.store.Put(session)
		metrics.SessionExhaustions.Inc()
		outcome = "exhausted"
		return ExhaustedMessage
	}

	session.MarkShown(item)
	e.store.Put(session)

	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("show", item.Name).
		Str("source", string(item.Source)).
		Float64("score", item.Score).
		Msg("recommendation delivered")

	return e.formatter.Recommendation(item, req, isMore)
}

// Reset clears a user's session and returns the reset confirmation.
func (e *Engine) Reset(ctx context.Context, userID string) string {
	unlock := e.lockUser(userID)
	defer unlock()

	e.store.Delete(userID)
	metrics.SessionRebuilds.WithLabelValues("reset").Inc()
	logging.Ctx(ctx).Info().Str("user_id", userID).Msg("session reset")
	return ResetMessage
}

// needsRebuild decides whether the candidate pool must be rebuilt and
// names the trigger. A continuation never rebuilds; a first contact, an
// exhausted pool, or a topic change does. A single-entry history cannot
// establish a topic change.
func (e *Engine) needsRebuild(session *Session, req StructuredRequest, hasSession, isMore bool) (bool, string) {
	if isMore {
		return false, ""
	}
	if !hasSession || session.Pool == nil {
		return true, "new_session"
	}
	// A fresh search after exhaustion starts over even on the same topic
	if len(session.Shown) >= len(session.Pool) {
		return true, "exhausted"
	}
	prev, ok := session.LastRequest()
	if !ok {
		return true, "new_session"
	}
	if TopicChanged(prev, req) {
		return true, "topic_change"
	}
	return false, ""
}

// lockUser serializes turns per user. The returned func releases the
// lock and drops the map entry once no other turn is waiting on it.
func (e *Engine) lockUser(userID string) func() {
	e.mu.Lock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &userLock{}
		e.userLocks[userID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.userLocks, userID)
		}
		e.mu.Unlock()
	}
}

// wantsMore reports whether the text asks for another recommendation.
func wantsMore(text string) bool {
	return containsAny(strings.ToLower(text), moreKeywords)
}

// looksHebrew reports whether at least a fifth of the characters are in
// the Hebrew Unicode block.
func looksHebrew(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	hebrew := 0
	for _, r := range runes {
		if r >= 0x0590 && r <= 0x05FF {
			hebrew++
		}
	}
	return float64(hebrew) >= float64(len(runes))*hebrewRatioThreshold
}
