// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"math"
	"strings"
)

// Scorer computes similarity between a structured request and a catalog
// item. The final score blends topical relevance with metadata fit and is
// rounded to three decimals in [0, 1]. Scorer is stateless and safe for
// concurrent use.
type Scorer struct {
	topicWeight    float64
	metadataWeight float64
	directWeight   float64
	fuzzyWeight    float64
}

// NewScorer returns a scorer with the given blend weights. Each pair of
// weights must sum to 1; config validation enforces this.
func NewScorer(topicWeight, metadataWeight, directWeight, fuzzyWeight float64) *Scorer {
	return &Scorer{
		topicWeight:    topicWeight,
		metadataWeight: metadataWeight,
		directWeight:   directWeight,
		fuzzyWeight:    fuzzyWeight,
	}
}

// Score returns the similarity score for item against req.
func (s *Scorer) Score(req StructuredRequest, item CatalogItem) float64 {
	topic := s.topicScore(req, item)
	metadata := s.metadataScore(req, item)
	final := topic*s.topicWeight + metadata*s.metadataWeight
	return round3(final)
}

// topicScore measures topical relevance: direct term matches against the
// item's name, description, and publisher, blended with fuzzy text
// similarity. Topics count double relative to keywords.
func (s *Scorer) topicScore(req StructuredRequest, item CatalogItem) float64 {
	totalTerms := len(req.Topics) + len(req.Keywords)
	if totalTerms == 0 {
		return 0.5 // neutral when the request named no subjects
	}

	name := strings.ToLower(item.Name)
	description := strings.ToLower(item.Description)
	publisher := strings.ToLower(item.Publisher)

	directMatches := 0
	for _, topic := range req.Topics {
		t := strings.ToLower(topic)
		if strings.Contains(name, t) || strings.Contains(description, t) || strings.Contains(publisher, t) {
			directMatches += 2
		}
	}
	for _, keyword := range req.Keywords {
		k := strings.ToLower(keyword)
		if strings.Contains(name, k) || strings.Contains(description, k) || strings.Contains(publisher, k) {
			directMatches++
		}
	}

	direct := math.Min(float64(directMatches)/float64(totalTerms*2), 1.0)

	query := strings.ToLower(strings.Join(req.Terms(), " "))
	fuzzy := math.Max(textRatio(query, name), textRatio(query, description))

	score := direct*s.directWeight + fuzzy*s.fuzzyWeight
	return math.Min(score, 1.0)
}

// metadataScore measures metadata fit as a weighted sum of three checks:
// language (0.5), duration (0.3), and episode count (0.2). Checks whose
// inputs are missing are skipped; with no applicable checks the score is
// a neutral 0.5.
func (s *Scorer) metadataScore(req StructuredRequest, item CatalogItem) float64 {
	score := 0.0
	checks := 0

	// Language check
	if req.Language != "" {
		checks++
		if languageMatches(req.Language, item.Languages) {
			score += 0.5
		}
	}

	// Duration check: shorter than the cap scores higher, over the cap
	// earns nothing. The cap is a soft preference, not a filter.
	if req.MaxDurationMinutes > 0 && item.DurationMinutes > 0 {
		checks++
		if item.DurationMinutes <= req.MaxDurationMinutes {
			ratio := 1 - float64(item.DurationMinutes)/float64(req.MaxDurationMinutes)
			score += 0.3 * (0.5 + 0.5*ratio)
		}
	}

	// Episode count check: an established but not overwhelming catalog
	// is the best signal.
	if item.Episodes > 0 {
		checks++
		switch {
		case item.Episodes >= 5 && item.Episodes <= 100:
			score += 0.2
		case item.Episodes > 100:
			score += 0.1
		}
	}

	if checks == 0 {
		return 0.5
	}
	return score
}

// languageMatches reports whether any of the item's language tags satisfy
// the preference. Hebrew accepts both the "he" and legacy "iw" codes;
// English accepts any tag containing "en" (matching regional variants
// such as "en-US").
func languageMatches(pref LanguagePreference, tags []string) bool {
	switch pref {
	case LanguageHebrew:
		for _, tag := range tags {
			if tag == "he" || tag == "iw" {
				return true
			}
		}
	case LanguageEnglish:
		for _, tag := range tags {
			if strings.Contains(tag, "en") {
				return true
			}
		}
	}
	return false
}

// textRatio computes a similarity ratio between two strings in [0, 1]:
// twice the total length of matching blocks divided by the combined
// length. Matching blocks are found by recursively locating the longest
// common substring.
func textRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matches := matchingBlockSize(ra, rb)
	return 2 * float64(matches) / float64(total)
}

// matchingBlockSize returns the total length of matching blocks between
// a and b: the longest common substring plus the matching blocks of the
// unmatched regions on either side of it.
func matchingBlockSize(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingBlockSize(a[:ai], b[:bi]) +
		matchingBlockSize(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring finds the longest run of runes common to a and b,
// returning its start offsets and length.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// prev[j] holds the match run length ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	return ai, bi, size
}

// round3 rounds to three decimal places.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
