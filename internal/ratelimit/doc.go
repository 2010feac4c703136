// Package ratelimit holds the request limiters used by the HTTP layer.
//
// FixedWindow counts hits per key inside a window that opens on the first hit
// and resets once it has fully elapsed. Its state lives in a Store: MemoryStore
// for a single process, RedisStore when several instances share one budget.
// TokenBucket throttles by client address with golang.org/x/time/rate.
package ratelimit
