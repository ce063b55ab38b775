// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"context"
	"strings"

	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/metrics"
)

// Classification is the verdict on whether a message belongs to the
// podcast recommendation domain.
type Classification struct {
	InDomain   bool
	Confidence float64
	Reason     string
	Tier       string // "rule", "semantic", or "fallback"
}

// Decision thresholds. A rule verdict above ruleConfidenceThreshold is
// final; otherwise the semantic tier runs. A message is rejected only
// when classified out-of-domain above rejectConfidenceThreshold, so
// uncertainty always resolves toward serving the user.
const (
	ruleConfidenceThreshold   = 0.8
	rejectConfidenceThreshold = 0.7
)

// outOfDomainPhrases are expressions that are definitely not podcast
// requests: weather, time, greetings, thanks, identity questions,
// navigation, holidays, bare question words, and technical complaints.
var outOfDomainPhrases = []string{
	// Weather
	"מה מזג האוויר", "מזג האוויר", "weather", "טמפרטורה",
	"גשם", "שמש", "שלג", "רוח", "עננים", "חם", "קר",

	// Time and dates
	"מה השעה", "איזה שעה", "מה הזמן", "מתי", "תאריך",
	"יום", "חודש", "שנה", "מחר", "אתמול",

	// Greetings
	"היי", "שלום", "hello", "hi", "בוקר טוב", "לילה טוב",
	"מה שלומך", "איך הולך", "מה נשמע",

	// Thanks
	"תודה", "thanks", "תודה רבה", "אין בעד מה",

	// Identity questions
	"איך קוראים לך", "מי אתה", "מה השם שלך", "מה אתה",

	// Navigation
	"איך מגיעים", "איפה נמצא", "דרך", "נסיעה", "כתובת",

	// Holidays
	"מתי פסח", "מתי ראש השנה", "חג", "חגים",

	// Bare question words
	"למה", "איך", "מתי", "איפה", "מי", "מה זה",

	// Technical complaints
	"לא עובד", "שגיאה", "בעיה", "תקלה",
}

// podcastKeywords mark a message as a listening request even when short.
var podcastKeywords = []string{
	"פודקאסט", "podcast", "לשמוע", "האזנה", "תוכנית",
	"שיחות", "ראיונות", "תוכן", "אודיו", "רדיו", "עניין",
}

// Classifier decides whether a message is a podcast request. Strict
// deterministic rules run first; only inconclusive messages reach the
// optional semantic tier. Semantic failures fall back to the rule
// verdict, so classification never blocks a turn.
type Classifier struct {
	semantic SemanticClassifier // nil disables the semantic tier
}

// NewClassifier returns a classifier. semantic may be nil.
func NewClassifier(semantic SemanticClassifier) *Classifier {
	return &Classifier{semantic: semantic}
}

// Classify returns the domain verdict for text.
func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	ruleResult := ruleCheck(text)
	if ruleResult.Confidence > ruleConfidenceThreshold {
		metrics.ClassifierDecisions.WithLabelValues("rule", verdictLabel(ruleResult.InDomain)).Inc()
		return ruleResult
	}

	if c.semantic == nil {
		metrics.ClassifierDecisions.WithLabelValues("rule", verdictLabel(ruleResult.InDomain)).Inc()
		return ruleResult
	}

	inDomain, confidence, err := c.semantic.ClassifyRelevance(ctx, text)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("semantic classification failed, using rule verdict")
		metrics.ClassifierDecisions.WithLabelValues("fallback", verdictLabel(ruleResult.InDomain)).Inc()
		return ruleResult
	}

	metrics.ClassifierDecisions.WithLabelValues("semantic", verdictLabel(inDomain)).Inc()
	return Classification{
		InDomain:   inDomain,
		Confidence: confidence,
		Reason:     "semantic classification",
		Tier:       "semantic",
	}
}

// ShouldReject reports whether the verdict is a confident out-of-domain
// classification. Anything less confident is served as a podcast request.
func (cl Classification) ShouldReject() bool {
	return !cl.InDomain && cl.Confidence > rejectConfidenceThreshold
}

// ruleCheck applies the strict deterministic rules: known out-of-domain
// phrases reject at high confidence, very short messages without a
// podcast keyword reject slightly lower, and everything else passes at
// low confidence for the semantic tier to refine.
func ruleCheck(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, phrase := range outOfDomainPhrases {
		if strings.Contains(lower, phrase) {
			return Classification{
				InDomain:   false,
				Confidence: 0.95,
				Reason:     "contains out-of-domain phrase: " + phrase,
				Tier:       "rule",
			}
		}
	}

	if len(strings.Fields(lower)) <= 3 && !containsAny(lower, podcastKeywords) {
		return Classification{
			InDomain:   false,
			Confidence: 0.85,
			Reason:     "short message without podcast keywords",
			Tier:       "rule",
		}
	}

	return Classification{
		InDomain:   true,
		Confidence: 0.3,
		Reason:     "no clear rejection signal",
		Tier:       "rule",
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func verdictLabel(inDomain bool) string {
	if inDomain {
		return "in_domain"
	}
	return "out_of_domain"
}
