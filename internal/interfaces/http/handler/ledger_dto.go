package handler

import (
	"time"

	"github.com/shopledger/backend/internal/domain/ledger"
)

// ProductLedgerRequest holds the optional query parameters of the path form
// of the ledger endpoint
type ProductLedgerRequest struct {
	SupplierID   string `form:"supplier_id" binding:"omitempty,uuid"`
	ReturnPolicy string `form:"return_policy" binding:"omitempty,max=32"`
}

// ProductLedgerQueryRequest is the query-string form, for product names that
// cannot travel in a path segment
type ProductLedgerQueryRequest struct {
	Product      string `form:"product" binding:"required,max=200"`
	SupplierID   string `form:"supplier_id" binding:"omitempty,uuid"`
	ReturnPolicy string `form:"return_policy" binding:"omitempty,max=32"`
}

// ProductLedgerResponse is the reconstructed ledger of one product
type ProductLedgerResponse struct {
	Product      string              `json:"product"`
	CurrentStock int64               `json:"currentStock"`
	Ledger       []LedgerRowResponse `json:"ledger"`
}

// LedgerRowResponse is one stock movement
type LedgerRowResponse struct {
	Date            time.Time `json:"date"`
	Type            string    `json:"type"`
	ReferenceNumber string    `json:"referenceNumber"`
	SupplierName    string    `json:"supplierName"`
	Cashier         string    `json:"cashier"`
	QuantityIn      int64     `json:"quantityIn"`
	QuantityOut     int64     `json:"quantityOut"`
	CostPrice       float64   `json:"costPrice"`
	SellingPrice    float64   `json:"sellingPrice"`
	Note            string    `json:"note"`
	Balance         int64     `json:"balance"`
}

func toProductLedgerResponse(l ledger.Ledger) ProductLedgerResponse {
	rows := make([]LedgerRowResponse, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = LedgerRowResponse{
			Date:            r.Date,
			Type:            string(r.Type),
			ReferenceNumber: r.ReferenceNumber,
			SupplierName:    r.SupplierName,
			Cashier:         r.Cashier,
			QuantityIn:      r.QuantityIn,
			QuantityOut:     r.QuantityOut,
			CostPrice:       r.CostPrice.InexactFloat64(),
			SellingPrice:    r.SellingPrice.InexactFloat64(),
			Note:            r.Note,
			Balance:         r.Balance,
		}
	}
	return ProductLedgerResponse{
		Product:      l.Product,
		CurrentStock: l.CurrentStock,
		Ledger:       rows,
	}
}
