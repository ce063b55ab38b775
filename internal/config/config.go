// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Candidate Sources:
//     - Spotify: Remote catalog search (client-credentials flow)
//     - Dataset: Local curated CSV catalog
//
//  2. Intelligence:
//     - OpenAI: Optional semantic intent analysis and relevance classification
//     - Recommend: Scoring weights and aggregation thresholds
//
//  3. Serving:
//     - Server: HTTP server settings (port, host, timeouts)
//     - API: Rate limiting and CORS
//     - Session: Per-user session lifetime and sweeping
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	OpenAI    OpenAIConfig    `koanf:"openai"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: "development" or "production"
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// SpotifyConfig holds Spotify Web API settings for remote catalog search.
// Uses the client-credentials OAuth flow; no user authorization is involved.
//
// Environment Variables:
//   - SPOTIFY_ENABLED: Enable the remote catalog source (default: true)
//   - SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET: API credentials
//   - SPOTIFY_MARKET: Primary market for show search (default: IL)
type SpotifyConfig struct {
	Enabled      bool          `koanf:"enabled"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url"`
	AuthURL      string        `koanf:"auth_url"`
	Market       string        `koanf:"market"`
	Timeout      time.Duration `koanf:"timeout"`

	// Outbound rate limiting (token bucket)
	RateLimit float64 `koanf:"rate_limit"` // requests per second
	RateBurst int     `koanf:"rate_burst"`

	// Circuit breaker thresholds
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// OpenAIConfig holds settings for the optional semantic tier of intent
// analysis and relevance classification. When disabled or unreachable the
// service falls back to deterministic heuristics.
//
// Environment Variables:
//   - OPENAI_ENABLED: Enable semantic analysis (default: false)
//   - OPENAI_API_KEY: API key
//   - OPENAI_MODEL: Chat model name (default: gpt-4o-mini)
type OpenAIConfig struct {
	Enabled bool          `koanf:"enabled"`
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatasetConfig holds settings for the local curated catalog.
type DatasetConfig struct {
	Path string `koanf:"path"` // CSV file path; empty disables the local source
}

// RecommendConfig holds scoring weights and aggregation thresholds.
// The defaults reproduce the tuned production behavior; changing them
// shifts the balance between topical match and metadata fit.
type RecommendConfig struct {
	TopicWeight    float64 `koanf:"topic_weight"`    // weight of topical relevance in the final score
	MetadataWeight float64 `koanf:"metadata_weight"` // weight of metadata fit in the final score
	DirectWeight   float64 `koanf:"direct_weight"`   // weight of direct term matching within topic score
	FuzzyWeight    float64 `koanf:"fuzzy_weight"`    // weight of fuzzy similarity within topic score

	MinRemoteResults int     `koanf:"min_remote_results"` // below this, keyword fallback queries run
	LocalThreshold   float64 `koanf:"local_threshold"`    // minimum score for local dataset items
	MaxHistory       int     `koanf:"max_history"`        // request history entries kept per session
}

// SessionConfig holds per-user session lifecycle settings.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`            // idle lifetime before a session is evicted
	SweepInterval time.Duration `koanf:"sweep_interval"` // how often the sweeper scans for expired sessions
}

// APIConfig holds API rate limiting and CORS settings.
//
// Environment Variables:
//   - API_RATE_LIMIT_REQS / API_RATE_LIMIT_WINDOW: Per-IP rate limit
//   - API_CORS_ORIGINS: Comma-separated allowed origins
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
