package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t, "/api/v1/ledger")
	tc.SetRequestID("req-123")

	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
	assert.Equal(t, "/api/v1/ledger", tc.Context.Request.URL.Path)
	assert.Equal(t, "req-123", tc.Context.GetString("request_id"))

	tc.Context.String(http.StatusTeapot, "short and stout")
	assert.Equal(t, http.StatusTeapot, tc.ResponseCode())
	assert.Equal(t, "short and stout", string(tc.ResponseBody()))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestDay(t *testing.T) {
	assert.Equal(t, BaseTime, Day(1))
	assert.Equal(t, BaseTime.AddDate(0, 0, 2), Day(3))
}

func TestLedgerFixture_SeedGorm(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
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

	fx := NewLedgerFixture()
	product := fx.Product("  Arabica   Beans ")
	supplier := fx.Supplier("Acme")
	fx.Receipt(product, &supplier, "GRN-1", 12, "100", "150", Day(1))
	fx.Sale("INV-1", "alice", ledger.SaleStatusCompleted, Day(2),
		LineItem{ProductID: product, Quantity: 4, UnitPrice: "150"})
	fx.Return("RET-1", "bob", models.ReturnStatusApproved, Day(3),
		LineItem{ProductID: product, Quantity: 1, UnitPrice: "150"})

	fx.SeedGorm(t, db)

	var stored models.ProductModel
	require.NoError(t, db.First(&stored, "id = ?", product).Error)
	assert.Equal(t, "Arabica   Beans", stored.Name)
	assert.Equal(t, "arabica beans", stored.NormalizedName)

	var storedSupplier models.SupplierModel
	require.NoError(t, db.First(&storedSupplier, "id = ?", supplier).Error)
	assert.Equal(t, "Acme", storedSupplier.Name)

	var items int64
	require.NoError(t, db.Model(&models.SaleItemModel{}).Count(&items).Error)
	assert.Equal(t, int64(1), items)

	var returnItems int64
	require.NoError(t, db.Model(&models.ReturnItemModel{}).Count(&returnItems).Error)
	assert.Equal(t, int64(1), returnItems)
}

func TestLedgerFixture_RejectsInvalidCatalogNames(t *testing.T) {
	fx := NewLedgerFixture()

	assert.Panics(t, func() { fx.Product("   ") })
	assert.Panics(t, func() { fx.Supplier("") })
	assert.Empty(t, fx.Products)
	assert.Empty(t, fx.Suppliers)
}

func TestAssertErrorResponse(t *testing.T) {
	engine := gin.New()
	engine.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "ERR_NOT_FOUND", "message": "nope"},
		})
	})

	w := DoGet(t, engine, "/missing")
	AssertErrorResponse(t, w, http.StatusNotFound, "ERR_NOT_FOUND")

	body := JSONResponseAs[map[string]any](t, w)
	assert.Contains(t, body, "error")
}
