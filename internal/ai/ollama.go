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

// defaultMaxTokens is used when a caller does not set a token budget.
const defaultMaxTokens = 2048

// OllamaClient talks to a local Ollama daemon.
type OllamaClient struct {
	Host  string
	Model string

	client    *http.Client
	limiter   *RateLimiter
	available *bool // cached probe result
}

// NewOllamaClient creates an Ollama client for the given host and model. The
// limiter is shared across every Ollama-backed client in the process.
func NewOllamaClient(host, model string, limiter *RateLimiter) *OllamaClient {
	return &OllamaClient{
		Host:    host,
		Model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		limiter: limiter,
	}
}

// IsAvailable checks that the daemon answers a model listing call. The result
// is cached for the lifetime of the client.
func (o *OllamaClient) IsAvailable(ctx context.Context) bool {
	if o.available != nil {
		return *o.available
	}

	ok := o.probe(ctx)
	o.available = &ok
	return ok
}

func (o *OllamaClient) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.Host+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		log.Printf("ollama not available: %v", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Generate sends a prompt to Ollama and returns the response text.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !o.IsAvailable(ctx) {
		return "", generationErr("ollama", fmt.Sprintf("service not available at %s", o.Host), nil)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	text, err := o.limiter.ExecuteWithBackoff(func() (string, error) {
		return o.generate(ctx, prompt, maxTokens)
	})
	if err != nil {
		return "", generationErr("ollama", "generation failed", err)
	}
	return text, nil
}

func (o *OllamaClient) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body := map[string]any{
		"model":  o.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": 0.7,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Host+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", Transient(fmt.Errorf("ollama API error: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(respBody))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", Transient(err)
		}
		return "", err
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Response, nil
}
