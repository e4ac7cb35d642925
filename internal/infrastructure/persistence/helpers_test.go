package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory SQLite database with the ledger schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ProductModel{},
		&models.SupplierModel{},
		&models.StockReceiptModel{},
		&models.SaleModel{},
		&models.SaleItemModel{},
		&models.ReturnModel{},
		&models.ReturnItemModel{},
	))
	return db
}

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n-1)
}

func seedProduct(t *testing.T, db *gorm.DB, name, normalized string) uuid.UUID {
	t.Helper()
	m := &models.ProductModel{Name: name, NormalizedName: normalized}
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = baseTime, baseTime
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	m := &models.SupplierModel{Name: name}
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = baseTime, baseTime
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

func seedReceipt(t *testing.T, db *gorm.DB, productID uuid.UUID, supplierID *uuid.UUID, ref string, qty int64, cost string, at time.Time) uuid.UUID {
	t.Helper()
	m := &models.StockReceiptModel{
		ProductID:       productID,
		SupplierID:      supplierID,
		ReferenceNumber: ref,
		Quantity:        qty,
		UnitCost:        decimal.RequireFromString(cost),
		SellingPrice:    decimal.RequireFromString(cost).Mul(decimal.NewFromInt(2)),
		ReceivedAt:      at,
	}
	m.ID = uuid.New()
	m.CreatedAt, m.UpdatedAt = at, at
	require.NoError(t, db.Create(m).Error)
	return m.ID
}

type saleItem struct {
	productID uuid.UUID
	qty       int64
	price     string
}

func seedSale(t *testing.T, db *gorm.DB, invoice string, status ledger.SaleStatus, at time.Time, items ...saleItem) uuid.UUID {
	t.Helper()
	sale := &models.SaleModel{
		InvoiceNumber: invoice,
		Cashier:       "alice",
		Status:        status,
		SoldAt:        at,
	}
	sale.ID = uuid.New()
	sale.CreatedAt, sale.UpdatedAt = at, at
	for i, it := range items {
		sale.Items = append(sale.Items, models.SaleItemModel{
			ID:        uuid.New(),
			LineNo:    i + 1,
			ProductID: it.productID,
			Quantity:  it.qty,
			UnitPrice: decimal.RequireFromString(it.price),
		})
	}
	require.NoError(t, db.Create(sale).Error)
	return sale.ID
}

func seedReturn(t *testing.T, db *gorm.DB, ref, status string, at time.Time, items ...saleItem) uuid.UUID {
	t.Helper()
	ret := &models.ReturnModel{
		ReferenceNumber: ref,
		ProcessedBy:     "bob",
		Status:          status,
		ReturnedAt:      at,
	}
	ret.ID = uuid.New()
	ret.CreatedAt, ret.UpdatedAt = at, at
	for i, it := range items {
		ret.Items = append(ret.Items, models.ReturnItemModel{
			ID:        uuid.New(),
			LineNo:    i + 1,
			ProductID: it.productID,
			Quantity:  it.qty,
			UnitPrice: decimal.RequireFromString(it.price),
		})
	}
	require.NoError(t, db.Create(ret).Error)
	return ret.ID
}
