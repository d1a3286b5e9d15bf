package ai

import (
	"context"
	"log"
	"strings"

	"github.com/TobiSchelling/contentforge/internal/sanitize"
)

// FallbackClient composes a primary and optional fallback provider into one
// resilient client. Once the primary fails it stays failed for the lifetime
// of the object; the factory rebuilds the client when settings change, which
// is when the primary gets another chance.
type FallbackClient struct {
	primary      Client
	fallback     Client
	primaryName  string
	fallbackName string

	primaryFailed bool
}

// NewFallbackClient composes primary and fallback. fallback may be nil. The
// names are used in composed error messages.
func NewFallbackClient(primary Client, primaryName string, fallback Client, fallbackName string) *FallbackClient {
	return &FallbackClient{
		primary:      primary,
		fallback:     fallback,
		primaryName:  primaryName,
		fallbackName: fallbackName,
	}
}

// Generate tries the primary, then the fallback, and returns sanitized output
// from whichever succeeds. On total failure it returns a *GenerationError
// whose message names every provider that failed.
func (f *FallbackClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var failures []string

	if !f.primaryFailed {
		if f.primary.IsAvailable(ctx) {
			text, err := f.primary.Generate(ctx, prompt, maxTokens)
			if err == nil {
				return sanitize.AIOutput(text), nil
			}
			f.primaryFailed = true
			msg := f.primaryName + " failed: " + err.Error()
			if isQuotaError(err) {
				msg += " (quota exhausted, trying fallback)"
			}
			log.Printf("primary AI client %s", msg)
			failures = append(failures, msg)
		} else {
			f.primaryFailed = true
			msg := f.primaryName + " not available"
			log.Printf("primary AI client %s", msg)
			failures = append(failures, msg)
		}
	} else {
		failures = append(failures, f.primaryName+" previously failed")
	}

	if f.fallback != nil {
		if f.fallback.IsAvailable(ctx) {
			text, err := f.fallback.Generate(ctx, prompt, maxTokens)
			if err == nil {
				log.Printf("using fallback AI client %s", f.fallbackName)
				return sanitize.AIOutput(text), nil
			}
			failures = append(failures, f.fallbackName+" failed: "+err.Error())
		} else {
			failures = append(failures, f.fallbackName+" not available")
		}
	} else {
		failures = append(failures, "no fallback service configured")
	}

	return "", &GenerationError{
		Provider: "all services",
		Message:  strings.Join(failures, "; "),
	}
}

// IsAvailable reports whether any composed provider is available.
func (f *FallbackClient) IsAvailable(ctx context.Context) bool {
	if f.primary.IsAvailable(ctx) {
		return true
	}
	return f.fallback != nil && f.fallback.IsAvailable(ctx)
}

// ActiveProvider names the provider a successful generation would use right
// now, for run metadata and estimates.
func (f *FallbackClient) ActiveProvider() string {
	if f.primaryFailed && f.fallback != nil {
		return f.fallbackName
	}
	return f.primaryName
}
