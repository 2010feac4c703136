package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreJanitorDropsExpiredWindows(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewMemoryStore(clock, time.Minute)
	defer store.Close()

	ctx := context.Background()
	_, err := store.Hit(ctx, "short", clock.Now(), 5, 30*time.Second)
	require.NoError(t, err)
	_, err = store.Hit(ctx, "long", clock.Now(), 5, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStoreCloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(clockwork.NewFakeClock(), time.Minute)
	store.Close()
	store.Close()
}
