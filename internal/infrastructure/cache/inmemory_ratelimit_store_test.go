package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, limit int, period time.Duration) (*InMemoryRateLimitStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := newInMemoryRateLimitStore(limit, period, clock.Now)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryRateLimitStore_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		store, _ := newTestStore(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			d, err := store.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, 3, d.Limit)
			assert.Equal(t, 2-i, d.Remaining)
		}

		d, err := store.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		store, _ := newTestStore(t, 1, time.Minute)

		d, _ := store.Allow(ctx, "a")
		assert.True(t, d.Allowed)
		d, _ = store.Allow(ctx, "b")
		assert.True(t, d.Allowed)
		d, _ = store.Allow(ctx, "a")
		assert.False(t, d.Allowed)
	})

	t.Run("window resets after the period", func(t *testing.T) {
		store, clock := newTestStore(t, 1, time.Minute)

		first, _ := store.Allow(ctx, "a")
		assert.True(t, first.Allowed)
		assert.True(t, first.ResetAt.Equal(clock.Now().Add(time.Minute)))

		d, _ := store.Allow(ctx, "a")
		assert.False(t, d.Allowed)

		clock.Advance(time.Minute)
		d, _ = store.Allow(ctx, "a")
		assert.True(t, d.Allowed)
	})

	t.Run("cleanup drops expired windows", func(t *testing.T) {
		store, clock := newTestStore(t, 5, time.Second)

		_, _ = store.Allow(ctx, "a")
		_, _ = store.Allow(ctx, "b")
		assert.Equal(t, 2, store.Size())

		clock.Advance(2 * time.Second)
		store.cleanup()
		assert.Equal(t, 0, store.Size())
	})
}

func TestInMemoryRateLimitStore_Close(t *testing.T) {
	store := NewInMemoryRateLimitStore(1, time.Minute)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
