// Package ai provides the text-generation capability behind the content
// pipeline: a common client contract, concrete providers (Ollama, Gemini, and
// a deterministic mock), sliding-window rate limiting with exponential
// backoff, and a primary/fallback composite.
package ai

import (
	"context"
	"errors"
	"strings"
)

// Client is the contract every provider implements. Generate fails with a
// *GenerationError on any provider failure. IsAvailable is a cheap liveness
// probe that never fails; results may be cached for the client's lifetime.
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsAvailable(ctx context.Context) bool
}

// GenerationError is the failure surfaced by the AI layer. Provider names the
// backend (or backends, for composed fallback failures) that failed.
type GenerationError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// generationErr wraps err into a GenerationError for the named provider.
func generationErr(provider, message string, err error) *GenerationError {
	return &GenerationError{Provider: provider, Message: message, Err: err}
}

// transientError tags an error as retryable. Providers wrap failures they know
// to be transient (timeouts, 5xx, connection resets) so the retry loop does
// not have to guess from the message.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retryableSubstrings is the documented fallback matcher for opaque errors
// from third-party code that carry no typed classification.
var retryableSubstrings = []string{
	"rate limit",
	"quota",
	"429",
	"timeout",
	"timed out",
	"connection",
	"network",
	"503",
	"502",
	"500",
	"temporarily unavailable",
}

// IsRetryable reports whether an error is worth retrying: either explicitly
// tagged via Transient, or matching a known transient-failure message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var t *transientError
	if errors.As(err, &t) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range retryableSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// isQuotaError reports whether an error looks like a quota or rate-limit
// rejection, used to annotate fallback attempts.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}
