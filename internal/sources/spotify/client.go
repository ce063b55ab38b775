// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Package spotify implements the remote catalog source on the Spotify
// Web API. It uses the client-credentials flow with a cached token,
// rate-limits outbound calls, and routes every request through a
// circuit breaker.
package spotify

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/SivanLackrif/shmali/internal/config"
	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/recommend"
)

// tokenSlack renews the access token this long before its expiry.
const tokenSlack = 30 * time.Second

// Client searches the Spotify show catalog. Safe for concurrent use.
type Client struct {
	http    *breakerClient
	limiter *rate.Limiter
	cfg     config.SpotifyConfig

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New creates a Spotify client from configuration.
func New(cfg config.SpotifyConfig) *Client {
	return &Client{
		http:    newBreakerClient(&http.Client{Timeout: cfg.Timeout}, cfg.BreakerMaxFailures, cfg.BreakerTimeout),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		cfg:     cfg,
	}
}

// Search queries the catalog with language-aware query variants and
// returns up to limit shows that pass the language filter. Individual
// variant failures are tolerated; an error is returned only when every
// variant failed and nothing was found.
func (c *Client) Search(ctx context.Context, query string, lang recommend.LanguagePreference, limit int) ([]recommend.CatalogItem, error) {
	var (
		results []recommend.CatalogItem
		seen    = make(map[string]bool)
		lastErr error
	)

	market := c.cfg.Market
	if lang == recommend.LanguageEnglish {
		market = "US"
	}

	for _, variant := range queryVariants(query, lang) {
		if len(results) >= limit {
			break
		}

		shows, err := c.searchOnce(ctx, variant, market, limit*2)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("query", variant).Msg("spotify search variant failed")
			lastErr = err
			continue
		}

		for _, show := range shows {
			if len(results) >= limit {
				break
			}
			if seen[show.Name] {
				continue
			}
			if !keepForLanguage(lang, show) {
				continue
			}
			seen[show.Name] = true

			item := recommend.CatalogItem{
				ID:          show.ID,
				Name:        show.Name,
				Publisher:   show.Publisher,
				Description: show.Description,
				URL:         show.ExternalURLs.Spotify,
				Languages:   show.Languages,
				Episodes:    show.TotalEpisodes,
			}
			// Episode length is a scoring signal; absence is tolerated
			if minutes, err := c.episodeDuration(ctx, show.ID); err == nil {
				item.DurationMinutes = minutes
			}
			results = append(results, item)
		}
	}

	if len(results) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return results, nil
}

// show is the Spotify API wire format for a podcast show.
type show struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Publisher     string   `json:"publisher"`
	Description   string   `json:"description"`
	Languages     []string `json:"languages"`
	TotalEpisodes int      `json:"total_episodes"`
	ExternalURLs  struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type searchResponse struct {
	Shows struct {
		Items []show `json:"items"`
	} `json:"shows"`
}

// searchOnce runs one catalog search query.
func (c *Client) searchOnce(ctx context.Context, query, market string, limit int) ([]show, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "show")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("market", market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return parsed.Shows.Items, nil
}

type episodesResponse struct {
	Items []struct {
		DurationMS int `json:"duration_ms"`
	} `json:"items"`
}

// episodeDuration fetches the latest episode's length in whole minutes.
func (c *Client) episodeDuration(ctx context.Context, showID string) (int, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/shows/"+showID+"/episodes?limit=1", nil)
	if err != nil {
		return 0, fmt.Errorf("create episodes request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("spotify episodes returned status %d", resp.StatusCode)
	}

	var parsed episodesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode episodes response: %w", err)
	}
	if len(parsed.Items) == 0 || parsed.Items[0].DurationMS <= 0 {
		return 0, nil
	}

	return int(math.Round(float64(parsed.Items[0].DurationMS) / 60000)), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached client-credentials token, renewing it
// shortly before expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSlack)) {
		return c.token, nil
	}

	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, body)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token endpoint returned status %d", resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("spotify token endpoint returned empty token")
	}

	expiresIn := parsed.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.token = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)

	return c.token, nil
}

// queryVariants builds the search queries for one topic. Hebrew
// variants mix Hebrew and transliterated markers; English variants
// steer the catalog away from Hebrew results.
func queryVariants(query string, lang recommend.LanguagePreference) []string {
	switch lang {
	case recommend.LanguageHebrew:
		return []string{
			query + " פודקאסט",
			"פודקאסט " + query,
			query + " podcast hebrew",
			query + " עברית",
		}
	case recommend.LanguageEnglish:
		return []string{
			query + " english podcast -hebrew -עברית",
			"english " + query + " podcast USA",
			query + " podcast UK",
			query + " podcast american",
			query + " english language",
		}
	default:
		return []string{
			query + " podcast",
			query + " פודקאסט",
		}
	}
}

// hebrewLetters in show names or descriptions mark Hebrew content even
// when the catalog's language tags say otherwise.
func hasHebrewLetters(s string) bool {
	for _, r := range s {
		if r >= 'א' && r <= 'ת' {
			return true
		}
	}
	return false
}

// keepForLanguage applies the language filter. Catalog language tags
// are unreliable for Hebrew shows, so name and description text is
// inspected as well.
func keepForLanguage(lang recommend.LanguagePreference, s show) bool {
	name := strings.ToLower(s.Name)
	description := strings.ToLower(s.Description)

	switch lang {
	case recommend.LanguageHebrew:
		if hasTag(s.Languages, "he") || hasTag(s.Languages, "iw") {
			return true
		}
		if strings.Contains(name, "עברית") || strings.Contains(name, "ישראל") || strings.Contains(name, "פודקאסט") {
			return true
		}
		if strings.Contains(description, "עברית") || strings.Contains(description, "ישראל") {
			return true
		}
		// Tagged English with no Hebrew text anywhere is a miss
		if hasTag(s.Languages, "en") && !hasHebrewLetters(name+description) {
			return false
		}
		return true

	case recommend.LanguageEnglish:
		if hasHebrewLetters(name+description) || hasTag(s.Languages, "he") || hasTag(s.Languages, "iw") {
			return false
		}
		if hasTag(s.Languages, "en") || hasTag(s.Languages, "en-US") || hasTag(s.Languages, "en-GB") {
			return true
		}
		// Untagged shows with no Hebrew text pass
		return len(s.Languages) == 0

	default:
		return true
	}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
