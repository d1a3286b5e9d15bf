package ai

import (
	"log"
	"time"
)

// waitBuffer is a small safety margin added to rate-limit waits so the oldest
// window entry has definitely aged out when we retry.
const waitBuffer = 100 * time.Millisecond

// RateLimiter is a sliding-window admission controller with an exponential
// backoff retry wrapper. One instance exists per provider family and is
// shared by every call into that family; it is not safe for concurrent use
// from multiple goroutines.
type RateLimiter struct {
	maxPerMinute   int
	maxPerHour     int
	maxRetries     int
	initialBackoff time.Duration

	minute []time.Time
	hour   []time.Time

	// Overridable for tests; real time otherwise.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter with the given window capacities, retry
// count, and initial backoff.
func NewRateLimiter(maxPerMinute, maxPerHour, maxRetries int, initialBackoff time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerMinute:   maxPerMinute,
		maxPerHour:     maxPerHour,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

// prune drops timestamps older than their window.
func (r *RateLimiter) prune() {
	now := r.now()
	minuteAgo := now.Add(-time.Minute)
	hourAgo := now.Add(-time.Hour)

	for len(r.minute) > 0 && r.minute[0].Before(minuteAgo) {
		r.minute = r.minute[1:]
	}
	for len(r.hour) > 0 && r.hour[0].Before(hourAgo) {
		r.hour = r.hour[1:]
	}
}

// CanMakeRequest reports whether a request is admissible now. When it is not,
// the returned duration is the time until the oldest entry in the violated
// window expires.
func (r *RateLimiter) CanMakeRequest() (bool, time.Duration) {
	r.prune()

	if len(r.minute) >= r.maxPerMinute {
		wait := time.Minute - r.now().Sub(r.minute[0])
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}

	if len(r.hour) >= r.maxPerHour {
		wait := time.Hour - r.now().Sub(r.hour[0])
		if wait < 0 {
			wait = 0
		}
		return false, wait
	}

	return true, 0
}

// RecordRequest counts an attempt against both windows. Call exactly once per
// attempted request, before it executes, so failed calls still consume quota.
func (r *RateLimiter) RecordRequest() {
	now := r.now()
	r.minute = append(r.minute, now)
	r.hour = append(r.hour, now)
}

// WaitIfNeeded blocks until the limiter admits a request. Returns true if it
// had to wait.
func (r *RateLimiter) WaitIfNeeded() bool {
	ok, wait := r.CanMakeRequest()
	if ok {
		return false
	}

	log.Printf("rate limit reached, waiting %.1fs", wait.Seconds())
	r.sleep(wait + waitBuffer)
	return true
}

// ExecuteWithBackoff runs fn under the limiter, retrying retryable failures
// with pure exponential backoff (no jitter, no cap). Non-retryable errors are
// returned immediately without consuming further retries.
func (r *RateLimiter) ExecuteWithBackoff(fn func() (string, error)) (string, error) {
	backoff := r.initialBackoff

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		r.WaitIfNeeded()
		r.RecordRequest()

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			log.Printf("non-retryable error: %v", err)
			return "", err
		}

		if attempt < r.maxRetries {
			log.Printf("retryable error (attempt %d/%d): %v, backing off %.1fs",
				attempt+1, r.maxRetries+1, err, backoff.Seconds())
			r.sleep(backoff)
			backoff *= 2
			continue
		}
	}

	log.Printf("max retries exceeded after %d attempts: %v", r.maxRetries+1, lastErr)
	return "", lastErr
}
