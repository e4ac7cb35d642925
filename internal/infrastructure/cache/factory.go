package cache

import (
	"fmt"

	"github.com/shopledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateLimitStoreFactory creates rate limit stores based on configuration
type RateLimitStoreFactory struct {
	rateLimit             config.RateLimitConfig
	redis                 config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateLimitStoreFactoryOption is a functional option for configuring the factory
type RateLimitStoreFactoryOption func(*RateLimitStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateLimitStoreFactoryOption {
	return func(f *RateLimitStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether the memory store replaces an
// unreachable Redis. Default is true.
func WithInMemoryFallback(allow bool) RateLimitStoreFactoryOption {
	return func(f *RateLimitStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateLimitStoreFactory creates a new factory
func NewRateLimitStoreFactory(rl config.RateLimitConfig, redisCfg config.RedisConfig, opts ...RateLimitStoreFactoryOption) *RateLimitStoreFactory {
	f := &RateLimitStoreFactory{
		rateLimit:             rl,
		redis:                 redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore returns the store named by ratelimit.backend. A redis backend
// that cannot be reached falls back to memory when allowed.
func (f *RateLimitStoreFactory) CreateStore() (RateLimitStore, error) {
	if f.rateLimit.Backend != config.RateLimitBackendRedis {
		f.logger.Info("using in-memory rate limit store")
		return f.CreateInMemoryStore(), nil
	}

	store, err := NewRedisRateLimitStore(f.redis, f.rateLimit.Requests, f.rateLimit.Window, f.rateLimit.KeyPrefix)
	if err == nil {
		f.logger.Info("using Redis rate limit store", zap.String("addr", f.redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis rate limit store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rate limit store. "+
		"Limits apply per instance until Redis is reachable at startup.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}

// CreateInMemoryStore creates a process-local store
func (f *RateLimitStoreFactory) CreateInMemoryStore() *InMemoryRateLimitStore {
	return NewInMemoryRateLimitStore(f.rateLimit.Requests, f.rateLimit.Window)
}
