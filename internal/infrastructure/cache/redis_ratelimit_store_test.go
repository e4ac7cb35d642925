package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestNewRedisRateLimitStoreWithClient_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	store := NewRedisRateLimitStoreWithClient(client, 5, time.Minute, "")
	assert.Equal(t, config.DefaultRateLimitKeyPrefix, store.keyPrefix)

	store = NewRedisRateLimitStoreWithClient(client, 5, time.Minute, "custom:")
	assert.Equal(t, "custom:", store.keyPrefix)
}

func TestRedisRateLimitStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := newRedisClient(t)
	ctx := context.Background()

	t.Run("counts across the window", func(t *testing.T) {
		store := NewRedisRateLimitStoreWithClient(client, 2, time.Minute, "test:")

		d, err := store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1, d.Remaining)

		d, err = store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed)

		d, err = store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.WithinDuration(t, time.Now().Add(time.Minute), d.ResetAt, 5*time.Second)

		ttl, err := client.PTTL(ctx, "test:1.2.3.4").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("window expires", func(t *testing.T) {
		store := NewRedisRateLimitStoreWithClient(client, 1, 200*time.Millisecond, "expiry:")

		d, err := store.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)

		d, err = store.Allow(ctx, "k")
		require.NoError(t, err)
		assert.False(t, d.Allowed)

		time.Sleep(300 * time.Millisecond)

		d, err = store.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}
