// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package intent turns free-text Hebrew messages into structured
// podcast requests.
//
// Two analyzers are provided: Client calls an OpenAI-compatible chat
// API for extraction and semantic relevance classification, and
// Fallback applies deterministic Hebrew heuristics. Composite chains
// them so the service works, degraded, without any API credentials.
package intent
