package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	tokenBucketCleanupEvery = 5 * time.Minute
	tokenBucketIdleAfter    = 10 * time.Minute
)

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucket keeps one rate.Limiter per key and forgets keys that stayed idle.
type TokenBucket struct {
	mu        sync.Mutex
	buckets   map[string]*bucketEntry
	rate      rate.Limit
	burst     int
	clock     clockwork.Clock
	cleanupAt time.Time
}

func NewTokenBucket(perSecond float64, burst int, clock clockwork.Clock) *TokenBucket {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		buckets:   make(map[string]*bucketEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		clock:     clock,
		cleanupAt: clock.Now().Add(tokenBucketCleanupEvery),
	}
}

func (bucket *TokenBucket) Allow(key string) bool {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	now := bucket.clock.Now()
	if now.After(bucket.cleanupAt) {
		bucket.cleanup(now)
		bucket.cleanupAt = now.Add(tokenBucketCleanupEvery)
	}

	entry, ok := bucket.buckets[key]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(bucket.rate, bucket.burst)}
		bucket.buckets[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (bucket *TokenBucket) Active() int {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	return len(bucket.buckets)
}

// cleanup must be called with mu held.
func (bucket *TokenBucket) cleanup(now time.Time) {
	cutoff := now.Add(-tokenBucketIdleAfter)
	for key, entry := range bucket.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(bucket.buckets, key)
		}
	}
}
