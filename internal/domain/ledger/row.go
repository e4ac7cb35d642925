package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of a stock movement
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// NoCounterparty is shown where a row has no supplier or handler
const NoCounterparty = "—"

// LedgerRow is one reconstructed stock movement. Exactly one of QuantityIn
// and QuantityOut is non-zero.
type LedgerRow struct {
	Date            time.Time
	Type            Direction
	ReferenceNumber string
	SupplierName    string
	Cashier         string
	QuantityIn      int64
	QuantityOut     int64
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	Note            string
	Balance         int64
	// Shortfall marks an OUT row that no stock receipt could cover
	Shortfall bool
}

// Delta returns the signed quantity change of the row
func (r LedgerRow) Delta() int64 {
	return r.QuantityIn - r.QuantityOut
}

// Ledger is the reconstructed stock history of one product
type Ledger struct {
	Product      string
	CurrentStock int64
	Rows         []LedgerRow
}

// TotalIn sums QuantityIn over all rows
func (l Ledger) TotalIn() int64 {
	var total int64
	for _, row := range l.Rows {
		total += row.QuantityIn
	}
	return total
}

// TotalOut sums QuantityOut over all rows
func (l Ledger) TotalOut() int64 {
	var total int64
	for _, row := range l.Rows {
		total += row.QuantityOut
	}
	return total
}

// ShortfallRows counts OUT rows with no attributable stock receipt
func (l Ledger) ShortfallRows() int {
	count := 0
	for _, row := range l.Rows {
		if row.Shortfall {
			count++
		}
	}
	return count
}
