// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package intent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/SivanLackrif/shmali/internal/recommend"
)

// analysisSystemPrompt asks the model for a structured request in JSON.
const analysisSystemPrompt = `אתה עוזר המלצות פודקאסטים. נתח את הבקשה והחזר JSON עם המבנה הבא:

{
    "topics": ["רשימת נושאים שמעניינים את המשתמש"],
    "duration_max": מספר דקות מקסימלי או null,
    "language_preference": "hebrew" או "english" או null,
    "keywords": ["מילות מפתח לחיפוש"]
}

חשוב:
- אם המשתמש מבקש "באנגלית" או "english" - language_preference: "english"
- אם המשתמש מבקש "בעברית" או לא מציין שפה - language_preference: "hebrew"
- אם המשתמש מציין זמן (10 דקות, 5 דקות) - duration_max: המספר`

// relevanceSystemPrompt asks the model whether a message is a podcast request.
const relevanceSystemPrompt = `אתה מסווג הודעות של משתמשים.

הצ'טבוט שלנו מיועד להמליץ על פודקאסטים בלבד.

החזר JSON עם השדה הבא:
{
    "is_podcast_related": true/false,
    "confidence": 0.0-1.0,
    "reason": "הסבר קצר למה זה קשור או לא קשור לפודקאסטים"
}

דוגמאות לבקשות שקשורות לפודקאסטים (is_podcast_related: true):
- "רוצה פודקאסט על ספורט"
- "משהו לשמוע על טכנולוגיה"
- "תכנית רדיו על חדשות"
- "שיחות על פסיכולוגיה"

דוגמאות לבקשות שלא קשורות לפודקאסטים (is_podcast_related: false):
- "מה מזג האוויר?"
- "איך קוראים לך?"
- "היי"
- "תודה"

חשוב: גם אם המשתמש כותב נושא כללי כמו "ספורט" או "טכנולוגיה" - אם זה יכול להיות בקשה לפודקאסט, החזר true.`

// Client calls an OpenAI-compatible chat completion API for intent
// analysis and relevance classification. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a client for the given OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// analysisResult is the model's JSON answer for Analyze.
type analysisResult struct {
	Topics             []string `json:"topics"`
	DurationMax        *int     `json:"duration_max"`
	LanguagePreference string   `json:"language_preference"`
	Keywords           []string `json:"keywords"`
}

// Analyze extracts a structured request from text via the chat API.
func (c *Client) Analyze(ctx context.Context, text string) (recommend.StructuredRequest, error) {
	content, err := c.chatCompletion(ctx, analysisSystemPrompt, text, 0.7, 300)
	if err != nil {
		return recommend.StructuredRequest{}, err
	}

	var result analysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return recommend.StructuredRequest{}, fmt.Errorf("parse analysis response: %w", err)
	}

	req := recommend.StructuredRequest{
		Topics:   result.Topics,
		Keywords: result.Keywords,
		Language: recommend.LanguageHebrew,
	}
	if result.LanguagePreference == string(recommend.LanguageEnglish) {
		req.Language = recommend.LanguageEnglish
	}
	if result.DurationMax != nil && *result.DurationMax > 0 {
		req.MaxDurationMinutes = *result.DurationMax
	}

	return req, nil
}

// relevanceResult is the model's JSON answer for ClassifyRelevance.
type relevanceResult struct {
	IsPodcastRelated bool    `json:"is_podcast_related"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

// ClassifyRelevance asks the model whether text is a podcast request.
func (c *Client) ClassifyRelevance(ctx context.Context, text string) (bool, float64, error) {
	user := fmt.Sprintf("בדוק אם הבקשה הזו קשורה לפודקאסטים: '%s'", text)
	content, err := c.chatCompletion(ctx, relevanceSystemPrompt, user, 0.1, 200)
	if err != nil {
		return false, 0, err
	}

	var result relevanceResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return false, 0, fmt.Errorf("parse relevance response: %w", err)
	}

	return result.IsPodcastRelated, result.Confidence, nil
}

// chat completion wire types
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatCompletion sends one system+user exchange and returns the reply content.
func (c *Client) chatCompletion(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
