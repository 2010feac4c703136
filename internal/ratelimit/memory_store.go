package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultSweepInterval = 5 * time.Minute

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps windows in a map guarded by a mutex. A janitor goroutine
// drops expired windows until Close is called.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	clock     clockwork.Clock
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryStore(clock clockwork.Clock, sweepInterval time.Duration) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if sweepInterval <= 0 {
		sweepInterval = defaultSweepInterval
	}

	store := &MemoryStore{
		entries: make(map[string]*windowEntry),
		clock:   clock,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go store.janitor(sweepInterval)
	return store
}

func (store *MemoryStore) Hit(_ context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &windowEntry{count: 1, resetAt: now.Add(window)}
		store.entries[key] = entry
		return Result{Allowed: true, Count: entry.count, ResetAt: entry.resetAt}, nil
	}
	if entry.count >= limit {
		return Result{Allowed: false, Count: entry.count, ResetAt: entry.resetAt}, nil
	}
	entry.count++
	return Result{Allowed: true, Count: entry.count, ResetAt: entry.resetAt}, nil
}

func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}

func (store *MemoryStore) Close() {
	store.closeOnce.Do(func() {
		close(store.stop)
		<-store.done
	})
}

func (store *MemoryStore) janitor(interval time.Duration) {
	defer close(store.done)

	ticker := store.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-store.stop:
			return
		case now := <-ticker.Chan():
			store.sweep(now)
		}
	}
}

func (store *MemoryStore) sweep(now time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for key, entry := range store.entries {
		if now.After(entry.resetAt) {
			delete(store.entries, key)
		}
	}
}
