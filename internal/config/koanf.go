// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shmali/config.yaml",
	"/etc/shmali/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Spotify: SpotifyConfig{
			Enabled:            true,
			ClientID:           "",
			ClientSecret:       "",
			BaseURL:            "https://api.spotify.com/v1",
			AuthURL:            "https://accounts.spotify.com/api/token",
			Market:             "IL",
			Timeout:            10 * time.Second,
			RateLimit:          5, // Spotify search quota is generous; stay well under it
			RateBurst:          10,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Enabled: false, // Deterministic fallback works without credentials
			APIKey:  "",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 15 * time.Second,
		},
		Dataset: DatasetConfig{
			Path: "",
		},
		Recommend: RecommendConfig{
			TopicWeight:      0.7,
			MetadataWeight:   0.3,
			DirectWeight:     0.7,
			FuzzyWeight:      0.3,
			MinRemoteResults: 5,
			LocalThreshold:   0.3,
			MaxHistory:       5,
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// SPOTIFY_CLIENT_ID -> spotify.client_id
	// HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SPOTIFY_CLIENT_ID -> spotify.client_id
//   - OPENAI_API_KEY -> openai.api_key
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Spotify mappings
		"spotify_enabled":              "spotify.enabled",
		"spotify_client_id":            "spotify.client_id",
		"spotify_client_secret":        "spotify.client_secret",
		"spotify_base_url":             "spotify.base_url",
		"spotify_auth_url":             "spotify.auth_url",
		"spotify_market":               "spotify.market",
		"spotify_timeout":              "spotify.timeout",
		"spotify_rate_limit":           "spotify.rate_limit",
		"spotify_rate_burst":           "spotify.rate_burst",
		"spotify_breaker_max_failures": "spotify.breaker_max_failures",
		"spotify_breaker_timeout":      "spotify.breaker_timeout",

		// OpenAI mappings
		"openai_enabled":  "openai.enabled",
		"openai_api_key":  "openai.api_key",
		"openai_base_url": "openai.base_url",
		"openai_model":    "openai.model",
		"openai_timeout":  "openai.timeout",

		// Dataset mappings
		"dataset_path": "dataset.path",

		// Recommendation mappings
		"recommend_topic_weight":       "recommend.topic_weight",
		"recommend_metadata_weight":    "recommend.metadata_weight",
		"recommend_direct_weight":      "recommend.direct_weight",
		"recommend_fuzzy_weight":       "recommend.fuzzy_weight",
		"recommend_min_remote_results": "recommend.min_remote_results",
		"recommend_local_threshold":    "recommend.local_threshold",
		"recommend_max_history":        "recommend.max_history",

		// Session mappings
		"session_ttl":            "session.ttl",
		"session_sweep_interval": "session.sweep_interval",

		// API mappings
		"api_rate_limit_reqs":   "api.rate_limit_reqs",
		"api_rate_limit_window": "api.rate_limit_window",
		"api_cors_origins":      "api.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown variables are dropped to avoid polluting the config tree
	return ""
}
