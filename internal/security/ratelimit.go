// Package security tracks failed login attempts and issues opaque tokens.
package security

import (
	"context"
	"sync"
	"time"
)

const (
	MaxLoginAttempts = 5
	LockoutWindow    = 15 * time.Minute
)

// Attempt is the per-identifier login history inside the current window.
type Attempt struct {
	FirstAttempt time.Time
	Count        int
}

// AttemptStore persists attempts. Implementations must be safe for
// concurrent use.
type AttemptStore interface {
	Load(ctx context.Context, identifier string) (Attempt, bool, error)
	Save(ctx context.Context, identifier string, a Attempt, ttl time.Duration) error
	Delete(ctx context.Context, identifier string) error
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed      bool      `json:"allowed"`
	Remaining    int       `json:"remaining_attempts"`
	LockoutUntil time.Time `json:"lockout_until,omitempty"`
}

// RateLimiter enforces MaxLoginAttempts per LockoutWindow per identifier.
// Construct it once at startup and share it.
type RateLimiter struct {
	store       AttemptStore
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	mu          sync.Mutex
}

// Option customises a RateLimiter.
type Option func(*RateLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *RateLimiter) { r.now = now }
}

// WithLimits overrides the attempt cap and window.
func WithLimits(maxAttempts int, window time.Duration) Option {
	return func(r *RateLimiter) {
		r.maxAttempts = maxAttempts
		r.window = window
	}
}

// NewRateLimiter builds a limiter over store.
func NewRateLimiter(store AttemptStore, opts ...Option) *RateLimiter {
	r := &RateLimiter{
		store:       store,
		maxAttempts: MaxLoginAttempts,
		window:      LockoutWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check counts one attempt for identifier and reports whether it may proceed.
// A denied check does not extend the lockout.
func (r *RateLimiter) Check(ctx context.Context, identifier string) (Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	attempt, ok, err := r.store.Load(ctx, identifier)
	if err != nil {
		return Decision{}, err
	}

	if !ok || now.Sub(attempt.FirstAttempt) > r.window {
		if err := r.store.Save(ctx, identifier, Attempt{FirstAttempt: now, Count: 1}, r.window); err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: true, Remaining: r.maxAttempts - 1}, nil
	}

	if attempt.Count >= r.maxAttempts {
		return Decision{Allowed: false, LockoutUntil: attempt.FirstAttempt.Add(r.window)}, nil
	}

	attempt.Count++
	if err := r.store.Save(ctx, identifier, attempt, r.remainingTTL(attempt, now)); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Remaining: r.maxAttempts - attempt.Count}, nil
}

// RecordFailure counts a failed login and restarts the window from now.
// Callers that already gate with Check must not also call this for the same
// attempt, or the attempt is counted twice.
func (r *RateLimiter) RecordFailure(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	attempt, ok, err := r.store.Load(ctx, identifier)
	if err != nil {
		return err
	}
	if ok {
		attempt.Count++
		attempt.FirstAttempt = now
	} else {
		attempt = Attempt{FirstAttempt: now, Count: 1}
	}
	return r.store.Save(ctx, identifier, attempt, r.window)
}

// Clear forgets identifier, typically after a successful login.
func (r *RateLimiter) Clear(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, identifier)
}

func (r *RateLimiter) remainingTTL(a Attempt, now time.Time) time.Duration {
	ttl := a.FirstAttempt.Add(r.window).Sub(now)
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
