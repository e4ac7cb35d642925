package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// LedgerFixture collects catalog and source records for one test. Records are
// kept as persistence models so the same fixture can seed any store.
type LedgerFixture struct {
	Products  []models.ProductModel
	Suppliers []models.SupplierModel
	Receipts  []models.StockReceiptModel
	Sales     []models.SaleModel
	Returns   []models.ReturnModel

	seq int
}

// LineItem is one product line of a sale or return
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice string
}

// NewLedgerFixture creates an empty fixture
func NewLedgerFixture() *LedgerFixture {
	return &LedgerFixture{}
}

func (f *LedgerFixture) nextID(kind string) uuid.UUID {
	f.seq++
	return NewTestUUID(fmt.Sprintf("%s-%d", kind, f.seq))
}

// Product adds a catalog product and returns its id. It panics on a name
// the catalog rejects.
func (f *LedgerFixture) Product(name string) uuid.UUID {
	p, err := catalog.NewProduct(name)
	if err != nil {
		panic(fmt.Sprintf("fixture product %q: %v", name, err))
	}
	p.ID = f.nextID("product")
	p.CreatedAt, p.UpdatedAt = BaseTime, BaseTime
	f.Products = append(f.Products, *models.ProductModelFromDomain(p))
	return p.ID
}

// Supplier adds a supplier and returns its id. It panics on a blank name.
func (f *LedgerFixture) Supplier(name string) uuid.UUID {
	s, err := catalog.NewSupplier(name)
	if err != nil {
		panic(fmt.Sprintf("fixture supplier %q: %v", name, err))
	}
	s.ID = f.nextID("supplier")
	s.CreatedAt, s.UpdatedAt = BaseTime, BaseTime
	f.Suppliers = append(f.Suppliers, *models.SupplierModelFromDomain(s))
	return s.ID
}

// Receipt adds a stock receipt. A nil supplier leaves the receipt unattributed.
func (f *LedgerFixture) Receipt(productID uuid.UUID, supplierID *uuid.UUID, ref string, qty int64, cost, price string, at time.Time) uuid.UUID {
	m := models.StockReceiptModel{
		ProductID:       productID,
		SupplierID:      supplierID,
		ReferenceNumber: ref,
		Quantity:        qty,
		UnitCost:        decimal.RequireFromString(cost),
		SellingPrice:    decimal.RequireFromString(price),
		ReceivedAt:      at,
	}
	m.ID = f.nextID("receipt")
	m.CreatedAt, m.UpdatedAt = at, at
	f.Receipts = append(f.Receipts, m)
	return m.ID
}

// Sale adds a sale header with its lines
func (f *LedgerFixture) Sale(invoice, cashier string, status ledger.SaleStatus, at time.Time, lines ...LineItem) uuid.UUID {
	m := models.SaleModel{
		InvoiceNumber: invoice,
		Cashier:       cashier,
		Status:        status,
		SoldAt:        at,
	}
	m.ID = f.nextID("sale")
	m.CreatedAt, m.UpdatedAt = at, at
	for i, l := range lines {
		m.Items = append(m.Items, models.SaleItemModel{
			ID:        f.nextID("sale-item"),
			SaleID:    m.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: decimal.RequireFromString(l.UnitPrice),
		})
	}
	f.Sales = append(f.Sales, m)
	return m.ID
}

// Return adds a customer return header with its lines
func (f *LedgerFixture) Return(ref, processedBy, status string, at time.Time, lines ...LineItem) uuid.UUID {
	m := models.ReturnModel{
		ReferenceNumber: ref,
		ProcessedBy:     processedBy,
		Status:          status,
		ReturnedAt:      at,
	}
	m.ID = f.nextID("return")
	m.CreatedAt, m.UpdatedAt = at, at
	for i, l := range lines {
		m.Items = append(m.Items, models.ReturnItemModel{
			ID:        f.nextID("return-item"),
			ReturnID:  m.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: decimal.RequireFromString(l.UnitPrice),
		})
	}
	f.Returns = append(f.Returns, m)
	return m.ID
}

// SeedGorm writes the fixture through GORM in dependency order
func (f *LedgerFixture) SeedGorm(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range f.Products {
			if err := tx.Create(&f.Products[i]).Error; err != nil {
				return err
			}
		}
		for i := range f.Suppliers {
			if err := tx.Create(&f.Suppliers[i]).Error; err != nil {
				return err
			}
		}
		for i := range f.Receipts {
			if err := tx.Create(&f.Receipts[i]).Error; err != nil {
				return err
			}
		}
		for i := range f.Sales {
			if err := tx.Create(&f.Sales[i]).Error; err != nil {
				return err
			}
		}
		for i := range f.Returns {
			if err := tx.Create(&f.Returns[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err, "Failed to seed ledger fixture")
}
