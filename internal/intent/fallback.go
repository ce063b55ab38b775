// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/SivanLackrif/shmali/internal/recommend"
)

// durationPattern matches "30 דקות", "עד 15 דק" and similar.
var durationPattern = regexp.MustCompile(`(\d+)\s*דק`)

// englishMarkers and hebrewMarkers detect an explicit language request.
var (
	englishMarkers = []string{"באנגלית", "אנגלית", "english", "in english"}
	hebrewMarkers  = []string{"בעברית", "עברית"}
)

// topicKeywords maps canonical topics to trigger words.
var topicKeywords = map[string][]string{
	"ספורט":     {"ספורט", "כדורגל", "כדורסל", "אימון"},
	"טכנולוגיה": {"טכנולוגיה", "מחשב", "תכנות", "אפליקציה"},
	"בריאות":    {"בריאות", "תזונה", "דיאטה", "רפואה"},
	"קומדיה":    {"קומדיה", "מצחיק", "הומור", "צחוק"},
	"חדשות":     {"חדשות", "פוליטיקה", "אקטואליה"},
	"עסקים":     {"עסקים", "כסף", "יזמות", "השקעות"},
}

// topicOrder fixes iteration order so extraction is deterministic.
var topicOrder = []string{"ספורט", "טכנולוגיה", "בריאות", "קומדיה", "חדשות", "עסקים"}

// Fallback extracts intent with deterministic Hebrew heuristics. It
// never fails and needs no network access.
type Fallback struct{}

// NewFallback returns the heuristic analyzer.
func NewFallback() *Fallback {
	return &Fallback{}
}

// Analyze extracts language, duration cap, topics, and keywords from text.
func (f *Fallback) Analyze(_ context.Context, text string) (recommend.StructuredRequest, error) {
	lower := strings.ToLower(text)

	req := recommend.StructuredRequest{
		Language: detectLanguage(lower),
	}

	if m := durationPattern.FindStringSubmatch(text); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil {
			req.MaxDurationMinutes = minutes
		}
	}

	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				req.Topics = append(req.Topics, topic)
				break
			}
		}
	}

	// First words stand in for real keyword extraction
	words := strings.Fields(lower)
	if len(words) > 3 {
		words = words[:3]
	}
	req.Keywords = words

	return req, nil
}

// detectLanguage returns the requested language, defaulting to Hebrew.
func detectLanguage(lower string) recommend.LanguagePreference {
	for _, marker := range englishMarkers {
		if strings.Contains(lower, marker) {
			return recommend.LanguageEnglish
		}
	}
	for _, marker := range hebrewMarkers {
		if strings.Contains(lower, marker) {
			return recommend.LanguageHebrew
		}
	}
	return recommend.LanguageHebrew
}
