package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockReceipt is an inbound stock event. Quantity is the original received
// amount and is never reduced by later sales.
type StockReceipt struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	SupplierID      *uuid.UUID
	SupplierName    string
	ReferenceNumber string
	Quantity        int64
	UnitCost        decimal.Decimal
	SellingPrice    decimal.Decimal
	ReceivedAt      time.Time
}

// SaleStatus is the status of the sale a line belongs to
type SaleStatus string

const (
	SaleStatusDraft             SaleStatus = "draft"
	SaleStatusCompleted         SaleStatus = "completed"
	SaleStatusPartiallyReturned SaleStatus = "partially_returned"
	SaleStatusFullyRefunded     SaleStatus = "fully_refunded"
	SaleStatusVoided            SaleStatus = "voided"
)

// CountsTowardLedger reports whether lines of a sale in this status appear in the ledger
func (s SaleStatus) CountsTowardLedger() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusPartiallyReturned, SaleStatusFullyRefunded:
		return true
	default:
		return false
	}
}

// LedgerStatuses returns the sale statuses whose lines contribute to the ledger
func LedgerStatuses() []SaleStatus {
	return []SaleStatus{
		SaleStatusCompleted,
		SaleStatusPartiallyReturned,
		SaleStatusFullyRefunded,
	}
}

// SaleLine is one product line of a finalized sale
type SaleLine struct {
	SaleID        uuid.UUID
	ProductID     uuid.UUID
	InvoiceNumber string
	Cashier       string
	Quantity      int64
	UnitPrice     decimal.Decimal
	Status        SaleStatus
	SoldAt        time.Time
}

// ReturnLine is one product line of an approved customer return
type ReturnLine struct {
	ReturnID        uuid.UUID
	ProductID       uuid.UUID
	ReferenceNumber string
	ProcessedBy     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	ReturnedAt      time.Time
}
