package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceiptReader lists stock receipts with their supplier names
type GormReceiptReader struct {
	db *gorm.DB
}

// NewGormReceiptReader creates a new GormReceiptReader
func NewGormReceiptReader(db *gorm.DB) *GormReceiptReader {
	return &GormReceiptReader{db: db}
}

// ListReceipts returns the product's receipts ordered by receipt time. A
// receipt whose supplier row is missing keeps an empty supplier name.
func (r *GormReceiptReader) ListReceipts(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.StockReceipt, error) {
	query := r.db.WithContext(ctx).
		Table("stock_receipts AS r").
		Select("r.id, r.product_id, r.supplier_id, s.name AS supplier_name, r.reference_number, " +
			"r.quantity, r.unit_cost, r.selling_price, r.received_at").
		Joins("LEFT JOIN suppliers AS s ON s.id = r.supplier_id").
		Where("r.product_id = ?", filter.ProductID)

	if filter.SupplierID != nil {
		query = query.Where("r.supplier_id = ?", *filter.SupplierID)
	}

	var rows []models.ReceiptRow
	if err := query.Order("r.received_at ASC, r.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stock receipts: %w", err)
	}

	receipts := make([]ledger.StockReceipt, len(rows))
	for i := range rows {
		receipts[i] = rows[i].ToDomain()
	}
	return receipts, nil
}

// GormSaleReader lists sale lines joined with their sale headers
type GormSaleReader struct {
	db *gorm.DB
}

// NewGormSaleReader creates a new GormSaleReader
func NewGormSaleReader(db *gorm.DB) *GormSaleReader {
	return &GormSaleReader{db: db}
}

// ListSaleLines returns the product's lines from sales in one of statuses,
// ordered by sale time, then sale, then line number.
func (r *GormSaleReader) ListSaleLines(ctx context.Context, productID uuid.UUID, statuses []ledger.SaleStatus) ([]ledger.SaleLine, error) {
	if len(statuses) == 0 {
		return []ledger.SaleLine{}, nil
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	var rows []models.SaleLineRow
	err := r.db.WithContext(ctx).
		Table("sale_items AS i").
		Select("s.id AS sale_id, i.product_id, s.invoice_number, s.cashier, " +
			"i.quantity, i.unit_price, s.status, s.sold_at").
		Joins("JOIN sales AS s ON s.id = i.sale_id").
		Where("i.product_id = ? AND s.status IN ?", productID, names).
		Order("s.sold_at ASC, s.id ASC, i.line_no ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}

	lines := make([]ledger.SaleLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// GormReturnReader lists approved return lines
type GormReturnReader struct {
	db *gorm.DB
}

// NewGormReturnReader creates a new GormReturnReader
func NewGormReturnReader(db *gorm.DB) *GormReturnReader {
	return &GormReturnReader{db: db}
}

// ListReturnLines returns the product's approved return lines ordered by return time
func (r *GormReturnReader) ListReturnLines(ctx context.Context, productID uuid.UUID) ([]ledger.ReturnLine, error) {
	var rows []models.ReturnLineRow
	err := r.db.WithContext(ctx).
		Table("sales_return_items AS i").
		Select("sr.id AS return_id, i.product_id, sr.reference_number, sr.processed_by, " +
			"i.quantity, i.unit_price, sr.returned_at").
		Joins("JOIN sales_returns AS sr ON sr.id = i.return_id").
		Where("i.product_id = ? AND sr.status = ?", productID, models.ReturnStatusApproved).
		Order("sr.returned_at ASC, sr.id ASC, i.line_no ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list return lines: %w", err)
	}

	lines := make([]ledger.ReturnLine, len(rows))
	for i := range rows {
		lines[i] = rows[i].ToDomain()
	}
	return lines, nil
}

// Ensure interface compliance
var (
	_ ledger.ReceiptReader = (*GormReceiptReader)(nil)
	_ ledger.SaleReader    = (*GormSaleReader)(nil)
	_ ledger.ReturnReader  = (*GormReturnReader)(nil)
)
