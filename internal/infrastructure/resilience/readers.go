package resilience

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
)

// BreakerReceiptReader guards a ledger.ReceiptReader
type BreakerReceiptReader struct {
	next    ledger.ReceiptReader
	breaker *Breaker
}

// NewBreakerReceiptReader wraps next with breaker
func NewBreakerReceiptReader(next ledger.ReceiptReader, breaker *Breaker) *BreakerReceiptReader {
	return &BreakerReceiptReader{next: next, breaker: breaker}
}

// ListReceipts implements ledger.ReceiptReader
func (r *BreakerReceiptReader) ListReceipts(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.StockReceipt, error) {
	return execute(r.breaker, func() ([]ledger.StockReceipt, error) {
		return r.next.ListReceipts(ctx, filter)
	})
}

// BreakerSaleReader guards a ledger.SaleReader
type BreakerSaleReader struct {
	next    ledger.SaleReader
	breaker *Breaker
}

// NewBreakerSaleReader wraps next with breaker
func NewBreakerSaleReader(next ledger.SaleReader, breaker *Breaker) *BreakerSaleReader {
	return &BreakerSaleReader{next: next, breaker: breaker}
}

// ListSaleLines implements ledger.SaleReader
func (r *BreakerSaleReader) ListSaleLines(ctx context.Context, productID uuid.UUID, statuses []ledger.SaleStatus) ([]ledger.SaleLine, error) {
	return execute(r.breaker, func() ([]ledger.SaleLine, error) {
		return r.next.ListSaleLines(ctx, productID, statuses)
	})
}

// BreakerReturnReader guards a ledger.ReturnReader
type BreakerReturnReader struct {
	next    ledger.ReturnReader
	breaker *Breaker
}

// NewBreakerReturnReader wraps next with breaker
func NewBreakerReturnReader(next ledger.ReturnReader, breaker *Breaker) *BreakerReturnReader {
	return &BreakerReturnReader{next: next, breaker: breaker}
}

// ListReturnLines implements ledger.ReturnReader
func (r *BreakerReturnReader) ListReturnLines(ctx context.Context, productID uuid.UUID) ([]ledger.ReturnLine, error) {
	return execute(r.breaker, func() ([]ledger.ReturnLine, error) {
		return r.next.ListReturnLines(ctx, productID)
	})
}

var (
	_ ledger.ReceiptReader = (*BreakerReceiptReader)(nil)
	_ ledger.SaleReader    = (*BreakerSaleReader)(nil)
	_ ledger.ReturnReader  = (*BreakerReturnReader)(nil)
)
