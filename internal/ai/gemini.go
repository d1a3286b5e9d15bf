package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient talks to the Google Gemini REST API. Every generation runs
// through the Gemini rate limiter's backoff wrapper; the free tier is far
// more capacity-constrained than a local model.
type GeminiClient struct {
	APIKey string
	Model  string

	client    *http.Client
	limiter   *RateLimiter
	available *bool // cached after the first trial generation
}

// NewGeminiClient creates a Gemini client. The limiter is shared across every
// Gemini-backed client in the process.
func NewGeminiClient(apiKey, model string, limiter *RateLimiter) *GeminiClient {
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		limiter: limiter,
	}
}

// IsAvailable verifies the API key with a one-token trial generation. The
// result is cached for the lifetime of the client.
func (g *GeminiClient) IsAvailable(ctx context.Context) bool {
	if g.available != nil {
		return *g.available
	}
	if g.APIKey == "" {
		ok := false
		g.available = &ok
		return false
	}

	_, err := g.generate(ctx, "Test", 8)
	ok := err == nil
	if err != nil {
		log.Printf("gemini not available: %v", err)
	}
	g.available = &ok
	return ok
}

// Generate sends a prompt to Gemini with rate limiting and backoff.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.APIKey == "" {
		return "", generationErr("gemini", "API key not configured", nil)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	text, err := g.limiter.ExecuteWithBackoff(func() (string, error) {
		return g.generate(ctx, prompt, maxTokens)
	})
	if err != nil {
		return "", generationErr("gemini", "generation failed", err)
	}
	return text, nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokens,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiBaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", Transient(fmt.Errorf("gemini API error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", Transient(err)
		}
		return "", err
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
