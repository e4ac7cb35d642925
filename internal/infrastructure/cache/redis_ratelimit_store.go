package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopledger/backend/internal/infrastructure/config"
)

// incrWindow increments the key and starts its expiry on the first hit of a
// window. It returns the count and the remaining TTL in milliseconds.
var incrWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisRateLimitStore implements RateLimitStore on Redis so every server
// instance shares the same counters.
type RedisRateLimitStore struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	period    time.Duration
}

// NewRedisRateLimitStore connects to Redis and verifies the connection
func NewRedisRateLimitStore(cfg config.RedisConfig, limit int, period time.Duration, keyPrefix string) (*RedisRateLimitStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateLimitStoreWithClient(client, limit, period, keyPrefix), nil
}

// NewRedisRateLimitStoreWithClient creates a store on an existing client
func NewRedisRateLimitStoreWithClient(client *redis.Client, limit int, period time.Duration, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = config.DefaultRateLimitKeyPrefix
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		period:    period,
	}
}

// Allow implements RateLimitStore
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := incrWindow.Run(ctx, s.client, []string{s.keyPrefix + key}, s.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count request: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply of length %d", len(res))
	}

	resetAt := time.Now().Add(time.Duration(res[1]) * time.Millisecond)
	return decide(res[0], s.limit, resetAt), nil
}

// Close closes the Redis client
func (s *RedisRateLimitStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client
func (s *RedisRateLimitStore) Client() *redis.Client {
	return s.client
}

var _ RateLimitStore = (*RedisRateLimitStore)(nil)
