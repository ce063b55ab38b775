// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"context"
	"time"
)

// LanguagePreference is the requested podcast language.
type LanguagePreference string

const (
	// LanguageHebrew is the default preference.
	LanguageHebrew LanguagePreference = "hebrew"
	// LanguageEnglish is selected on explicit request only.
	LanguageEnglish LanguagePreference = "english"
)

// Source identifies where a catalog item came from.
type Source string

const (
	// SourceSpotify marks items fetched from the Spotify catalog.
	SourceSpotify Source = "spotify"
	// SourceDataset marks items loaded from the local curated dataset.
	SourceDataset Source = "dataset"
)

// StructuredRequest is the machine-readable form of a user's free-text
// request, produced by intent analysis.
type StructuredRequest struct {
	// Topics are the subjects the user asked about (e.g. "ספורט").
	Topics []string `json:"topics"`

	// Keywords are secondary terms extracted from the text.
	Keywords []string `json:"keywords"`

	// Language is the requested podcast language. Defaults to Hebrew.
	Language LanguagePreference `json:"language"`

	// MaxDurationMinutes caps episode length. Zero means no preference.
	MaxDurationMinutes int `json:"max_duration_minutes"`
}

// Terms returns topics and keywords combined, topics first.
func (r StructuredRequest) Terms() []string {
	terms := make([]string, 0, len(r.Topics)+len(r.Keywords))
	terms = append(terms, r.Topics...)
	terms = append(terms, r.Keywords...)
	return terms
}

// CatalogItem is a podcast show from any candidate source.
type CatalogItem struct {
	// ID is the source-specific identifier.
	ID string `json:"id"`

	// Name is the show title.
	Name string `json:"name"`

	// Publisher is the show author or network.
	Publisher string `json:"publisher,omitempty"`

	// Description is the show synopsis.
	Description string `json:"description,omitempty"`

	// URL links to the show page.
	URL string `json:"url,omitempty"`

	// Languages holds BCP-47 style language tags (e.g. "he", "en-US").
	Languages []string `json:"languages"`

	// DurationMinutes is the typical episode length. Zero means unknown.
	DurationMinutes int `json:"duration_minutes"`

	// Episodes is the total episode count. Zero means unknown.
	Episodes int `json:"episodes"`

	// Source identifies the originating catalog.
	Source Source `json:"source"`

	// Score is the similarity score assigned during aggregation,
	// rounded to three decimals in [0, 1].
	Score float64 `json:"score"`
}

// CatalogSource searches a remote catalog for podcast shows.
// Implementations must be safe for concurrent use.
type CatalogSource interface {
	// Search returns shows matching the query in the requested language.
	Search(ctx context.Context, query string, lang LanguagePreference, limit int) ([]CatalogItem, error)
}

// DatasetSource lists the local curated catalog.
type DatasetSource interface {
	// All returns every item in the dataset.
	All() []CatalogItem
}

// Analyzer converts free text into a structured request.
type Analyzer interface {
	// Analyze extracts topics, keywords, language, and duration from text.
	Analyze(ctx context.Context, text string) (StructuredRequest, error)
}

// SemanticClassifier decides whether a message is about podcasts when the
// deterministic rules are inconclusive.
type SemanticClassifier interface {
	// ClassifyRelevance returns true if the text is an in-domain request.
	ClassifyRelevance(ctx context.Context, text string) (bool, float64, error)
}

// Session tracks one user's conversation state.
type Session struct {
	// UserID is the stable conversation identifier.
	UserID string

	// History holds recent structured requests, oldest first.
	History []StructuredRequest

	// Pool is the scored candidate pool for the current topic,
	// sorted by descending score.
	Pool []CatalogItem

	// Shown records item names already recommended this session.
	Shown map[string]bool

	// LastActive is updated on every turn and drives TTL eviction.
	LastActive time.Time
}

// NewSession returns an empty session for the given user.
func NewSession(userID string) *Session {
	return &Session{
		UserID:     userID,
		Shown:      make(map[string]bool),
		LastActive: time.Now(),
	}
}

// NextUnseen returns the highest-scored item not yet shown, or false
// when the pool is exhausted. The caller marks the item as shown.
func (s *Session) NextUnseen() (CatalogItem, bool) {
	for _, item := range s.Pool {
		if !s.Shown[item.Name] {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// MarkShown records an item as already recommended.
func (s *Session) MarkShown(item CatalogItem) {
	s.Shown[item.Name] = true
}

// LastRequest returns the most recent structured request, or false when
// the session has no history yet.
func (s *Session) LastRequest() (StructuredRequest, bool) {
	if len(s.History) == 0 {
		return StructuredRequest{}, false
	}
	return s.History[len(s.History)-1], true
}

// RecordRequest appends a request to the history, keeping at most max entries.
func (s *Session) RecordRequest(req StructuredRequest, max int) {
	s.History = append(s.History, req)
	if len(s.History) > max {
		s.History = s.History[len(s.History)-max:]
	}
}

// TopicChanged reports whether two consecutive requests ask about
// different subjects. Topic sets are compared order-insensitively;
// duplicate topics collapse, so ["a","a"] and ["a"] are the same set.
func TopicChanged(prev, curr StructuredRequest) bool {
	prevSet := topicSet(prev.Topics)
	currSet := topicSet(curr.Topics)
	if len(prevSet) != len(currSet) {
		return true
	}
	for t := range currSet {
		if !prevSet[t] {
			return true
		}
	}
	return false
}

func topicSet(topics []string) map[string]bool {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return set
}
