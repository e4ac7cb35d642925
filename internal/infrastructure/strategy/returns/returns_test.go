package returns

import (
	"testing"
	"time"

	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludeReturnPolicy(t *testing.T) {
	p := NewExcludeReturnPolicy()

	assert.Equal(t, "exclude", p.Name())
	assert.Equal(t, strategy.StrategyTypeReturnPolicy, p.Type())
	assert.NotEmpty(t, p.Description())

	_, ok := p.Restock(ledger.ReturnLine{Quantity: 3, ReturnedAt: time.Now()}, nil)
	assert.False(t, ok)
}

func TestReplenishReturnPolicy_Restock(t *testing.T) {
	p := NewReplenishReturnPolicy()
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.AddDate(0, 0, 10)

	receipts := []ledger.StockReceipt{
		{Quantity: 5, UnitCost: decimal.NewFromInt(10), ReceivedAt: t1},
		{Quantity: 5, UnitCost: decimal.NewFromInt(14), ReceivedAt: t2},
	}

	tests := []struct {
		name       string
		returnedAt time.Time
		wantCost   decimal.Decimal
	}{
		{"before any receipt", t1.AddDate(0, 0, -1), decimal.Zero},
		{"same instant as first receipt", t1, decimal.NewFromInt(10)},
		{"between receipts", t1.AddDate(0, 0, 5), decimal.NewFromInt(10)},
		{"after last receipt", t2.AddDate(0, 0, 1), decimal.NewFromInt(14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ret := ledger.ReturnLine{Quantity: 2, UnitPrice: decimal.NewFromInt(20), ReturnedAt: tt.returnedAt}

			batch, ok := p.Restock(ret, receipts)
			require.True(t, ok)
			assert.Equal(t, int64(2), batch.Remaining)
			assert.True(t, tt.wantCost.Equal(batch.UnitCost), "got %s", batch.UnitCost)
			assert.True(t, decimal.NewFromInt(20).Equal(batch.SellingPrice))
			assert.Equal(t, ledger.NoCounterparty, batch.SupplierName)
			assert.True(t, tt.returnedAt.Equal(batch.OpenedAt))
		})
	}
}

func TestReplenishReturnPolicy_IgnoresEmptyReturn(t *testing.T) {
	_, ok := NewReplenishReturnPolicy().Restock(ledger.ReturnLine{Quantity: 0}, nil)
	assert.False(t, ok)
}

func TestReplenishReturnPolicy_WithReconstructor(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2024, 5, n, 12, 0, 0, 0, time.UTC) }

	receipts := []ledger.StockReceipt{
		{Quantity: 2, UnitCost: decimal.NewFromInt(50), SellingPrice: decimal.NewFromInt(70), SupplierName: "Farm", ReceivedAt: day(1)},
	}
	sales := []ledger.SaleLine{
		{InvoiceNumber: "INV-1", Quantity: 2, UnitPrice: decimal.NewFromInt(70), Status: ledger.SaleStatusCompleted, SoldAt: day(2)},
		{InvoiceNumber: "INV-2", Quantity: 1, UnitPrice: decimal.NewFromInt(70), Status: ledger.SaleStatusCompleted, SoldAt: day(4)},
	}
	returns := []ledger.ReturnLine{
		{ReferenceNumber: "RET-1", Quantity: 1, UnitPrice: decimal.NewFromInt(70), ReturnedAt: day(3)},
	}

	excluded := ledger.NewReconstructor(NewExcludeReturnPolicy()).Reconstruct("Eggs", receipts, sales, returns)
	replenished := ledger.NewReconstructor(NewReplenishReturnPolicy()).Reconstruct("Eggs", receipts, sales, returns)

	assert.Equal(t, 1, excluded.ShortfallRows())
	assert.Equal(t, 0, replenished.ShortfallRows())
	assert.Equal(t, excluded.CurrentStock, replenished.CurrentStock)

	last := replenished.Rows[len(replenished.Rows)-1]
	assert.Equal(t, "INV-2", last.ReferenceNumber)
	assert.True(t, decimal.NewFromInt(50).Equal(last.CostPrice))

	for _, row := range replenished.Rows {
		if row.ReferenceNumber == "RET-1" {
			assert.True(t, decimal.NewFromInt(50).Equal(row.CostPrice))
		}
	}
}
