package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

// Result is the window state after one hit has been applied by a Store.
type Result struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// Store applies hits atomically per key.
//
// A missing or expired window (now after resetAt) restarts at count 1 and is
// allowed. A window already at limit is denied without being incremented.
// Anything else is incremented and allowed.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error)
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type FixedWindow struct {
	store  Store
	clock  clockwork.Clock
	limit  int
	window time.Duration
}

func NewFixedWindow(store Store, clock clockwork.Clock, limit int, window time.Duration) *FixedWindow {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindow{store: store, clock: clock, limit: limit, window: window}
}

func (limiter *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	now := limiter.clock.Now()
	result, err := limiter.store.Hit(ctx, key, now, limiter.limit, limiter.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit hit %s: %w", key, err)
	}

	decision := Decision{
		Allowed:   result.Allowed,
		Limit:     limiter.limit,
		Remaining: limiter.limit - result.Count,
		ResetAt:   result.ResetAt,
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if !result.Allowed {
		decision.RetryAfter = retryAfter(now, result.ResetAt)
	}
	return decision, nil
}

func (limiter *FixedWindow) Window() time.Duration {
	return limiter.window
}

// retryAfter rounds the wait up to whole seconds, never below one.
func retryAfter(now time.Time, resetAt time.Time) time.Duration {
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return wait.Truncate(time.Second) + roundUpRemainder(wait)
}

func roundUpRemainder(wait time.Duration) time.Duration {
	if wait%time.Second == 0 {
		return 0
	}
	return time.Second
}
