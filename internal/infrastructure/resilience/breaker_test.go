package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errStore = errors.New("connection refused")

type stubReceiptReader struct {
	calls int
	err   error
	rows  []ledger.StockReceipt
}

func (s *stubReceiptReader) ListReceipts(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.StockReceipt, error) {
	s.calls++
	return s.rows, s.err
}

type stubSaleReader struct {
	calls int
	err   error
}

func (s *stubSaleReader) ListSaleLines(ctx context.Context, productID uuid.UUID, statuses []ledger.SaleStatus) ([]ledger.SaleLine, error) {
	s.calls++
	return nil, s.err
}

type stubReturnReader struct {
	calls int
	err   error
}

func (s *stubReturnReader) ListReturnLines(ctx context.Context, productID uuid.UUID) ([]ledger.ReturnLine, error) {
	s.calls++
	return nil, s.err
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 2,
	}
}

func TestBreakerReceiptReader(t *testing.T) {
	t.Run("passes results through while closed", func(t *testing.T) {
		want := []ledger.StockReceipt{{ReferenceNumber: "GRN-1", Quantity: 5}}
		stub := &stubReceiptReader{rows: want}
		reader := NewBreakerReceiptReader(stub, NewBreaker("receipts", testBreakerConfig(), nil))

		got, err := reader.ListReceipts(context.Background(), ledger.ReceiptFilter{ProductID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("opens after consecutive failures and fails fast", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		breaker := NewBreaker("receipts", testBreakerConfig(), zap.New(core))
		stub := &stubReceiptReader{err: errStore}
		reader := NewBreakerReceiptReader(stub, breaker)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			_, err := reader.ListReceipts(ctx, ledger.ReceiptFilter{})
			require.ErrorIs(t, err, errStore)
		}
		assert.Equal(t, gobreaker.StateOpen, breaker.State())

		_, err := reader.ListReceipts(ctx, ledger.ReceiptFilter{})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnavailable)
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, 2, stub.calls, "open breaker must not reach the store")

		assert.NotZero(t, logs.FilterMessage("Circuit breaker state changed").Len())
		assert.Equal(t, 1, logs.FilterMessage("Circuit breaker rejected call").Len())
	})
}

func TestBreaker_IgnoresCallerOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"context cancelled", context.Canceled},
		{"wrapped cancellation", errors.Join(errors.New("query"), context.Canceled)},
		{"not found", shared.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := NewBreaker("sales", testBreakerConfig(), nil)
			stub := &stubSaleReader{err: tt.err}
			reader := NewBreakerSaleReader(stub, breaker)

			for i := 0; i < 5; i++ {
				_, err := reader.ListSaleLines(context.Background(), uuid.New(), ledger.LedgerStatuses())
				require.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, gobreaker.StateClosed, breaker.State())
			assert.Equal(t, 5, stub.calls)
		})
	}
}

func TestBreakerReturnReader_Status(t *testing.T) {
	breaker := NewBreaker("returns", testBreakerConfig(), nil)
	reader := NewBreakerReturnReader(&stubReturnReader{err: errStore}, breaker)

	_, err := reader.ListReturnLines(context.Background(), uuid.New())
	require.Error(t, err)

	status := breaker.Status()
	assert.Equal(t, "returns", status.Name)
	assert.Equal(t, "closed", status.State)
	assert.Equal(t, uint32(1), status.Requests)
	assert.Equal(t, uint32(1), status.ConsecutiveFailures)
	assert.Equal(t, "returns", breaker.Name())
}
