package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// StockReceiptModel is one received batch of a product.
type StockReceiptModel struct {
	BaseModel
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_receipts_product_received,priority:1"`
	SupplierID      *uuid.UUID      `gorm:"type:uuid;index"`
	ReferenceNumber string          `gorm:"type:varchar(50);not null"`
	Quantity        int64           `gorm:"not null"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedAt      time.Time       `gorm:"not null;index:idx_stock_receipts_product_received,priority:2"`
}

// TableName returns the table name for GORM
func (StockReceiptModel) TableName() string {
	return "stock_receipts"
}

// SaleModel is a sale header. Its lines live in sale_items.
type SaleModel struct {
	BaseModel
	InvoiceNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Cashier       string            `gorm:"type:varchar(100);not null"`
	Status        ledger.SaleStatus `gorm:"type:varchar(30);not null;index"`
	SoldAt        time.Time         `gorm:"not null;index"`
	Items         []SaleItemModel   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one product line of a sale.
type SaleItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// Return statuses. Only approved returns reach the ledger.
const (
	ReturnStatusPending  = "pending"
	ReturnStatusApproved = "approved"
	ReturnStatusRejected = "rejected"
)

// ReturnModel is a customer return header.
type ReturnModel struct {
	BaseModel
	ReferenceNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID          *uuid.UUID        `gorm:"type:uuid;index"`
	ProcessedBy     string            `gorm:"type:varchar(100);not null"`
	Status          string            `gorm:"type:varchar(20);not null;default:'approved'"`
	ReturnedAt      time.Time         `gorm:"not null;index"`
	Items           []ReturnItemModel `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "sales_returns"
}

// ReturnItemModel is one product line of a customer return.
type ReturnItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReturnID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "sales_return_items"
}

// ReceiptRow is the projection scanned by the receipt reader.
type ReceiptRow struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	SupplierID      *uuid.UUID
	SupplierName    *string
	ReferenceNumber string
	Quantity        int64
	UnitCost        decimal.Decimal
	SellingPrice    decimal.Decimal
	ReceivedAt      time.Time
}

// ToDomain converts the projection to a ledger StockReceipt.
func (r *ReceiptRow) ToDomain() ledger.StockReceipt {
	var supplierName string
	if r.SupplierName != nil {
		supplierName = *r.SupplierName
	}
	return ledger.StockReceipt{
		ID:              r.ID,
		ProductID:       r.ProductID,
		SupplierID:      r.SupplierID,
		SupplierName:    supplierName,
		ReferenceNumber: r.ReferenceNumber,
		Quantity:        r.Quantity,
		UnitCost:        r.UnitCost,
		SellingPrice:    r.SellingPrice,
		ReceivedAt:      r.ReceivedAt,
	}
}

// SaleLineRow is the projection scanned by the sale reader.
type SaleLineRow struct {
	SaleID        uuid.UUID
	ProductID     uuid.UUID
	InvoiceNumber string
	Cashier       string
	Quantity      int64
	UnitPrice     decimal.Decimal
	Status        ledger.SaleStatus
	SoldAt        time.Time
}

// ToDomain converts the projection to a ledger SaleLine.
func (r *SaleLineRow) ToDomain() ledger.SaleLine {
	return ledger.SaleLine{
		SaleID:        r.SaleID,
		ProductID:     r.ProductID,
		InvoiceNumber: r.InvoiceNumber,
		Cashier:       r.Cashier,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Status:        r.Status,
		SoldAt:        r.SoldAt,
	}
}

// ReturnLineRow is the projection scanned by the return reader.
type ReturnLineRow struct {
	ReturnID        uuid.UUID
	ProductID       uuid.UUID
	ReferenceNumber string
	ProcessedBy     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	ReturnedAt      time.Time
}

// ToDomain converts the projection to a ledger ReturnLine.
func (r *ReturnLineRow) ToDomain() ledger.ReturnLine {
	return ledger.ReturnLine{
		ReturnID:        r.ReturnID,
		ProductID:       r.ProductID,
		ReferenceNumber: r.ReferenceNumber,
		ProcessedBy:     r.ProcessedBy,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		ReturnedAt:      r.ReturnedAt,
	}
}
