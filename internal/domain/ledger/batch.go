package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// FifoBatch is the working copy of a receipt's unconsumed quantity during a
// single reconstruction. It never outlives the call that created it.
type FifoBatch struct {
	Remaining    int64
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	SupplierName string
	OpenedAt     time.Time
}

// Take consumes up to want units and returns how many were taken
func (b *FifoBatch) Take(want int64) int64 {
	if want <= 0 || b.Remaining <= 0 {
		return 0
	}
	taken := min(b.Remaining, want)
	b.Remaining -= taken
	return taken
}

// Exhausted reports whether the batch has nothing left to give
func (b *FifoBatch) Exhausted() bool {
	return b.Remaining <= 0
}
