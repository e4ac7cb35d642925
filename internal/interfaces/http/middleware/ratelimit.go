package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/infrastructure/cache"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Store cache.RateLimitStore
	// KeyFunc picks the bucket for a request; client IP when nil
	KeyFunc func(*gin.Context) string
	// OnLimited is called for each rejected request
	OnLimited func(c *gin.Context)
	Logger    *zap.Logger
}

// RateLimit rejects requests over the store's window with 429. When the
// store itself fails the request is let through and the error logged, so a
// Redis outage does not take the ledger API down with it.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	fallback := cfg.Logger
	if fallback == nil {
		fallback = zap.NewNop()
	}

	return func(c *gin.Context) {
		decision, err := cfg.Store.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.FromContextOr(c.Request.Context(), fallback).Warn("Rate limit store unavailable, allowing request",
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			if cfg.OnLimited != nil {
				cfg.OnLimited(c)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
