// Package cache holds short-lived shared state for the HTTP layer. Today
// that is the request counter behind rate limiting.
package cache

import (
	"context"
	"time"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimitStore counts requests per key over fixed windows
type RateLimitStore interface {
	// Allow records one request for key and reports whether it fits the window
	Allow(ctx context.Context, key string) (Decision, error)

	// Close releases the store's resources
	Close() error
}

func decide(count int64, limit int, resetAt time.Time) Decision {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
