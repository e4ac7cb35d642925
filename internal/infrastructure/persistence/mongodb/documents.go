package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identifiers are stored as canonical UUID strings so documents stay readable
// from the mongo shell.

type productDocument struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	NormalizedName string    `bson:"normalized_name"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (d productDocument) toDomain() (*catalog.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("product %q: invalid id: %w", d.ID, err)
	}
	return &catalog.Product{
		BaseEntity: shared.BaseEntity{
			ID:        id,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		},
		Name:           d.Name,
		NormalizedName: d.NormalizedName,
	}, nil
}

type supplierDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func (d supplierDocument) toDomain() (*catalog.Supplier, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("supplier %q: invalid id: %w", d.ID, err)
	}
	return &catalog.Supplier{
		BaseEntity: shared.BaseEntity{ID: id},
		Name:       d.Name,
	}, nil
}

type receiptDocument struct {
	ID              string               `bson:"_id"`
	ProductID       string               `bson:"product_id"`
	SupplierID      string               `bson:"supplier_id,omitempty"`
	ReferenceNumber string               `bson:"reference_number"`
	Quantity        int64                `bson:"quantity"`
	UnitCost        primitive.Decimal128 `bson:"unit_cost"`
	SellingPrice    primitive.Decimal128 `bson:"selling_price"`
	ReceivedAt      time.Time            `bson:"received_at"`

	// Filled by the $lookup stage
	Supplier []supplierDocument `bson:"supplier,omitempty"`
}

func (d receiptDocument) toDomain() (ledger.StockReceipt, error) {
	var out ledger.StockReceipt

	id, err := uuid.Parse(d.ID)
	if err != nil {
		return out, fmt.Errorf("receipt %q: invalid id: %w", d.ID, err)
	}
	productID, err := uuid.Parse(d.ProductID)
	if err != nil {
		return out, fmt.Errorf("receipt %q: invalid product id: %w", d.ID, err)
	}
	cost, err := toDecimal(d.UnitCost)
	if err != nil {
		return out, fmt.Errorf("receipt %q: unit cost: %w", d.ID, err)
	}
	price, err := toDecimal(d.SellingPrice)
	if err != nil {
		return out, fmt.Errorf("receipt %q: selling price: %w", d.ID, err)
	}

	out = ledger.StockReceipt{
		ID:              id,
		ProductID:       productID,
		ReferenceNumber: d.ReferenceNumber,
		Quantity:        d.Quantity,
		UnitCost:        cost,
		SellingPrice:    price,
		ReceivedAt:      d.ReceivedAt,
	}
	if d.SupplierID != "" {
		supplierID, err := uuid.Parse(d.SupplierID)
		if err != nil {
			return out, fmt.Errorf("receipt %q: invalid supplier id: %w", d.ID, err)
		}
		out.SupplierID = &supplierID
	}
	if len(d.Supplier) > 0 {
		out.SupplierName = d.Supplier[0].Name
	}
	return out, nil
}

type lineItemDocument struct {
	ProductID string               `bson:"product_id"`
	Quantity  int64                `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
}

// saleLineDocument is one unwound item of a sale document
type saleLineDocument struct {
	ID            string           `bson:"_id"`
	InvoiceNumber string           `bson:"invoice_number"`
	Cashier       string           `bson:"cashier"`
	Status        string           `bson:"status"`
	SoldAt        time.Time        `bson:"sold_at"`
	Item          lineItemDocument `bson:"items"`
	LineIndex     int64            `bson:"line_index"`
}

func (d saleLineDocument) toDomain() (ledger.SaleLine, error) {
	var out ledger.SaleLine

	saleID, err := uuid.Parse(d.ID)
	if err != nil {
		return out, fmt.Errorf("sale %q: invalid id: %w", d.ID, err)
	}
	productID, err := uuid.Parse(d.Item.ProductID)
	if err != nil {
		return out, fmt.Errorf("sale %q line %d: invalid product id: %w", d.ID, d.LineIndex, err)
	}
	price, err := toDecimal(d.Item.UnitPrice)
	if err != nil {
		return out, fmt.Errorf("sale %q line %d: unit price: %w", d.ID, d.LineIndex, err)
	}

	return ledger.SaleLine{
		SaleID:        saleID,
		ProductID:     productID,
		InvoiceNumber: d.InvoiceNumber,
		Cashier:       d.Cashier,
		Quantity:      d.Item.Quantity,
		UnitPrice:     price,
		Status:        ledger.SaleStatus(d.Status),
		SoldAt:        d.SoldAt,
	}, nil
}

// returnLineDocument is one unwound item of a sales return document
type returnLineDocument struct {
	ID              string           `bson:"_id"`
	ReferenceNumber string           `bson:"reference_number"`
	ProcessedBy     string           `bson:"processed_by"`
	ReturnedAt      time.Time        `bson:"returned_at"`
	Item            lineItemDocument `bson:"items"`
	LineIndex       int64            `bson:"line_index"`
}

func (d returnLineDocument) toDomain() (ledger.ReturnLine, error) {
	var out ledger.ReturnLine

	returnID, err := uuid.Parse(d.ID)
	if err != nil {
		return out, fmt.Errorf("return %q: invalid id: %w", d.ID, err)
	}
	productID, err := uuid.Parse(d.Item.ProductID)
	if err != nil {
		return out, fmt.Errorf("return %q line %d: invalid product id: %w", d.ID, d.LineIndex, err)
	}
	price, err := toDecimal(d.Item.UnitPrice)
	if err != nil {
		return out, fmt.Errorf("return %q line %d: unit price: %w", d.ID, d.LineIndex, err)
	}

	return ledger.ReturnLine{
		ReturnID:        returnID,
		ProductID:       productID,
		ReferenceNumber: d.ReferenceNumber,
		ProcessedBy:     d.ProcessedBy,
		Quantity:        d.Item.Quantity,
		UnitPrice:       price,
		ReturnedAt:      d.ReturnedAt,
	}, nil
}

// toDecimal converts a BSON decimal. A missing field decodes to the zero
// Decimal128, which still parses as zero.
func toDecimal(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}
