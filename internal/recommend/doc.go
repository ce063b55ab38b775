// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package recommend implements the Hebrew podcast recommendation core:
// relevance classification, candidate aggregation, similarity scoring,
// per-user session tracking, and Hebrew response formatting.
//
// Pipeline for a single conversation turn:
//
//	text -> relevance check -> intent analysis -> candidate aggregation
//	     -> similarity scoring -> session-aware selection -> Hebrew reply
//
// The entry point is Engine.HandleTurn. Candidate sources (the Spotify
// catalog and the local dataset) are injected behind the CatalogSource
// interface; intent analysis and semantic classification are injected
// behind Analyzer and SemanticClassifier. All external dependencies are
// optional: every tier degrades to a deterministic fallback so a turn
// never fails outright because a remote service is down.
package recommend
