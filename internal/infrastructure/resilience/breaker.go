// Package resilience guards ledger source reads with circuit breakers so a
// failing store is not hammered by every ledger request.
package resilience

import (
	"context"
	"errors"

	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker wraps gobreaker with logging
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
}

// Status is a snapshot of a breaker for health reporting
type Status struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// NewBreaker creates a breaker that opens after cfg.FailureThreshold
// consecutive failures.
func NewBreaker(name string, cfg config.BreakerConfig, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		name:   name,
		logger: logger,
	}
}

// isSuccessful keeps caller-side outcomes from tripping the breaker: a
// cancelled request or a missing row says nothing about store health.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, shared.ErrNotFound)
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Status returns a snapshot of the breaker counters
func (b *Breaker) Status() Status {
	counts := b.cb.Counts()
	return Status{
		Name:                b.name,
		State:               b.cb.State().String(),
		Requests:            counts.Requests,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}

// execute runs fn through b. Rejections by an open or saturated breaker
// become shared.ErrUnavailable.
func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			b.logger.Warn("Circuit breaker rejected call",
				zap.String("breaker", b.name),
				zap.Error(err),
			)
			return zero, shared.WrapDomainError(shared.ErrUnavailable.Code, shared.ErrUnavailable.Message, err)
		}
		return zero, err
	}
	return result.(T), nil
}
