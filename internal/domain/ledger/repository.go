package ledger

import (
	"context"

	"github.com/google/uuid"
)

// ReceiptFilter narrows the receipts fetched for a ledger
type ReceiptFilter struct {
	ProductID  uuid.UUID
	SupplierID *uuid.UUID
}

// ReceiptReader lists stock receipts ordered by receipt time ascending
type ReceiptReader interface {
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]StockReceipt, error)
}

// SaleReader lists sale lines of sales in one of statuses, ordered by sale time ascending
type SaleReader interface {
	ListSaleLines(ctx context.Context, productID uuid.UUID, statuses []SaleStatus) ([]SaleLine, error)
}

// ReturnReader lists return lines ordered by return time ascending
type ReturnReader interface {
	ListReturnLines(ctx context.Context, productID uuid.UUID) ([]ReturnLine, error)
}
