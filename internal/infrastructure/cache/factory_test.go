package cache

import (
	"testing"
	"time"

	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestRateLimitStoreFactory_CreateStore(t *testing.T) {
	rl := config.RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute}

	t.Run("memory backend", func(t *testing.T) {
		rl := rl
		rl.Backend = config.RateLimitBackendMemory

		store, err := NewRateLimitStoreFactory(rl, unreachableRedis).CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryRateLimitStore{}, store)
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		rl := rl
		rl.Backend = config.RateLimitBackendRedis
		core, logs := observer.New(zapcore.WarnLevel)

		store, err := NewRateLimitStoreFactory(rl, unreachableRedis, WithLogger(zap.New(core))).CreateStore()
		require.NoError(t, err)
		defer store.Close()

		assert.IsType(t, &InMemoryRateLimitStore{}, store)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		rl := rl
		rl.Backend = config.RateLimitBackendRedis

		_, err := NewRateLimitStoreFactory(rl, unreachableRedis, WithInMemoryFallback(false)).CreateStore()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis rate limit store unavailable")
	})
}
