package returns

import (
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared/strategy"
)

// ExcludeReturnPolicy records returns as inbound rows but never lets them
// back into the FIFO pool
type ExcludeReturnPolicy struct {
	strategy.BaseStrategy
}

// NewExcludeReturnPolicy creates a new exclude policy
func NewExcludeReturnPolicy() *ExcludeReturnPolicy {
	return &ExcludeReturnPolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			"exclude",
			strategy.StrategyTypeReturnPolicy,
			"Returned units are counted in the balance but are not available for FIFO costing",
		),
	}
}

// Restock never opens a batch
func (p *ExcludeReturnPolicy) Restock(_ ledger.ReturnLine, _ []ledger.StockReceipt) (ledger.FifoBatch, bool) {
	return ledger.FifoBatch{}, false
}
