package ledger

import "github.com/shopledger/backend/internal/domain/shared/strategy"

// ReturnPolicy decides whether a customer return puts stock back into the
// FIFO pool. receipts are ordered oldest first.
type ReturnPolicy interface {
	strategy.Strategy
	Restock(ret ReturnLine, receipts []StockReceipt) (FifoBatch, bool)
}
