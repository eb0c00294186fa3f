// Package ratelimit implements sliding-window rate limiting keyed by an
// arbitrary string (client IP or normalized document number). Stores are
// injected so tests can drive the clock and deployments can share state
// through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed bool
	// RetryAfter is the recommended Retry-After when blocked; zero when
	// allowed or when the window has no entries.
	RetryAfter time.Duration
	// Remaining is how many requests are left in the current window.
	Remaining int
}

// Store records one request attempt per Allow call and decides whether the
// key is within its window budget.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Limiter binds a store to a fixed limit/window configuration.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New creates a limiter allowing at most limit requests per key per window.
func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow checks and records one request for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	return l.store.Allow(ctx, key, l.limit, l.window)
}

// Limit returns the configured maximum requests per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }
