package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

// attemptLimiter counts failures per key in a sliding window. Successful
// sign ins are never recorded.
type attemptLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	failures map[string][]time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

// blocked reports whether key reached the limit and, if so, how long until the
// oldest failure in the window expires.
func (limiter *attemptLimiter) blocked(key string, now time.Time) (bool, time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	recent := limiter.recentLocked(key, now)
	if len(recent) < limiter.limit {
		return false, 0
	}
	return true, recent[0].Add(limiter.window).Sub(now)
}

func (limiter *attemptLimiter) fail(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.failures[key] = append(limiter.recentLocked(key, now), now)
}

func (limiter *attemptLimiter) clear(key string) {
	limiter.mu.Lock()
	delete(limiter.failures, key)
	limiter.mu.Unlock()
}

func (limiter *attemptLimiter) recentLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-limiter.window)
	stamps := limiter.failures[key]

	first := 0
	for first < len(stamps) && !stamps[first].After(cutoff) {
		first++
	}
	if first == len(stamps) {
		delete(limiter.failures, key)
		return nil
	}

	recent := stamps[first:]
	limiter.failures[key] = recent
	return recent
}

func loginLimiterKey(c *fiber.Ctx, email string) string {
	return requestLimiterKey(c) + "|" + strings.ToLower(strings.TrimSpace(email))
}
