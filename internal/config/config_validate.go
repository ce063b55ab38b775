// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSpotify(); err != nil {
		return err
	}

	if err := c.validateOpenAI(); err != nil {
		return err
	}

	if err := c.validateDataset(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

// validateSpotify validates Spotify configuration (only if enabled)
func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}

	if c.Spotify.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required when SPOTIFY_ENABLED=true")
	}
	if c.Spotify.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required when SPOTIFY_ENABLED=true")
	}
	if err := validateHTTPURL(c.Spotify.BaseURL, "SPOTIFY_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.Spotify.AuthURL, "SPOTIFY_AUTH_URL"); err != nil {
		return err
	}
	if c.Spotify.RateLimit <= 0 {
		return fmt.Errorf("SPOTIFY_RATE_LIMIT must be positive, got %f", c.Spotify.RateLimit)
	}
	if c.Spotify.RateBurst < 1 {
		return fmt.Errorf("SPOTIFY_RATE_BURST must be at least 1, got %d", c.Spotify.RateBurst)
	}
	return nil
}

// validateOpenAI validates OpenAI configuration (only if enabled)
func (c *Config) validateOpenAI() error {
	if !c.OpenAI.Enabled {
		return nil
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when OPENAI_ENABLED=true")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("OPENAI_MODEL must not be empty when OPENAI_ENABLED=true")
	}
	return validateHTTPURL(c.OpenAI.BaseURL, "OPENAI_BASE_URL")
}

// validateDataset validates the local dataset configuration
func (c *Config) validateDataset() error {
	if c.Dataset.Path == "" {
		return nil // Local source is optional
	}
	if _, err := os.Stat(c.Dataset.Path); err != nil {
		return fmt.Errorf("DATASET_PATH %s is not readable: %w", c.Dataset.Path, err)
	}
	return nil
}

// validateRecommend validates scoring weights and thresholds.
// Weight pairs must sum to 1 so scores stay in [0, 1].
func (c *Config) validateRecommend() error {
	if err := validateWeightPair(c.Recommend.TopicWeight, c.Recommend.MetadataWeight,
		"RECOMMEND_TOPIC_WEIGHT", "RECOMMEND_METADATA_WEIGHT"); err != nil {
		return err
	}
	if err := validateWeightPair(c.Recommend.DirectWeight, c.Recommend.FuzzyWeight,
		"RECOMMEND_DIRECT_WEIGHT", "RECOMMEND_FUZZY_WEIGHT"); err != nil {
		return err
	}
	if c.Recommend.MinRemoteResults < 0 {
		return fmt.Errorf("RECOMMEND_MIN_REMOTE_RESULTS must not be negative, got %d", c.Recommend.MinRemoteResults)
	}
	if c.Recommend.LocalThreshold < 0 || c.Recommend.LocalThreshold > 1 {
		return fmt.Errorf("RECOMMEND_LOCAL_THRESHOLD must be in [0, 1], got %f", c.Recommend.LocalThreshold)
	}
	if c.Recommend.MaxHistory < 2 {
		return fmt.Errorf("RECOMMEND_MAX_HISTORY must be at least 2, got %d", c.Recommend.MaxHistory)
	}
	return nil
}

// validateSession validates session lifecycle configuration
func (c *Config) validateSession() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.Session.SweepInterval)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateWeightPair checks a pair of complementary weights sums to 1
func validateWeightPair(a, b float64, nameA, nameB string) error {
	if a < 0 || a > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", nameA, a)
	}
	if b < 0 || b > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", nameB, b)
	}
	const epsilon = 1e-9
	if diff := a + b - 1; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("%s and %s must sum to 1, got %f", nameA, nameB, a+b)
	}
	return nil
}

// validateHTTPURL checks that a URL is well-formed with an http(s) scheme
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
