package returns

import (
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ReplenishReturnPolicy puts returned units back into the FIFO pool as a new
// batch opened at the return time
type ReplenishReturnPolicy struct {
	strategy.BaseStrategy
}

// NewReplenishReturnPolicy creates a new replenish policy
func NewReplenishReturnPolicy() *ReplenishReturnPolicy {
	return &ReplenishReturnPolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			"replenish",
			strategy.StrategyTypeReturnPolicy,
			"Returned units re-enter the FIFO pool at the latest receipt cost known at return time",
		),
	}
}

// Restock opens a batch for the returned quantity. The unit cost is taken
// from the most recent receipt on or before the return, or zero when the
// return predates every receipt.
func (p *ReplenishReturnPolicy) Restock(ret ledger.ReturnLine, receipts []ledger.StockReceipt) (ledger.FifoBatch, bool) {
	if ret.Quantity <= 0 {
		return ledger.FifoBatch{}, false
	}

	cost := decimal.Zero
	for _, rc := range receipts {
		if rc.ReceivedAt.After(ret.ReturnedAt) {
			break
		}
		cost = rc.UnitCost
	}

	return ledger.FifoBatch{
		Remaining:    ret.Quantity,
		UnitCost:     cost,
		SellingPrice: ret.UnitPrice,
		SupplierName: ledger.NoCounterparty,
		OpenedAt:     ret.ReturnedAt,
	}, true
}
