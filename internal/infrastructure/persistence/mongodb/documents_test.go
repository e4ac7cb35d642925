package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func dec128(t *testing.T, s string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(s)
	require.NoError(t, err)
	return d
}

func TestProductDocument_ToDomain(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	product, err := productDocument{
		ID:             id.String(),
		Name:           "Green Tea",
		NormalizedName: "green tea",
		CreatedAt:      now,
		UpdatedAt:      now,
	}.toDomain()
	require.NoError(t, err)

	assert.Equal(t, id, product.ID)
	assert.Equal(t, "Green Tea", product.Name)
	assert.Equal(t, "green tea", product.NormalizedName)
	assert.True(t, product.CreatedAt.Equal(now))

	_, err = productDocument{ID: "not-a-uuid"}.toDomain()
	assert.Error(t, err)
}

func TestSupplierDocument_ToDomain(t *testing.T) {
	id := uuid.New()

	supplier, err := supplierDocument{ID: id.String(), Name: "Acme"}.toDomain()
	require.NoError(t, err)
	assert.Equal(t, id, supplier.ID)
	assert.Equal(t, "Acme", supplier.Name)

	_, err = supplierDocument{ID: "nope"}.toDomain()
	assert.Error(t, err)
}

func TestReceiptDocument_ToDomain(t *testing.T) {
	id, productID, supplierID := uuid.New(), uuid.New(), uuid.New()
	received := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("maps supplier from lookup", func(t *testing.T) {
		receipt, err := receiptDocument{
			ID:              id.String(),
			ProductID:       productID.String(),
			SupplierID:      supplierID.String(),
			ReferenceNumber: "GRN-001",
			Quantity:        10,
			UnitCost:        dec128(t, "2.50"),
			SellingPrice:    dec128(t, "4.00"),
			ReceivedAt:      received,
			Supplier:        []supplierDocument{{ID: supplierID.String(), Name: "Acme"}},
		}.toDomain()
		require.NoError(t, err)

		assert.Equal(t, id, receipt.ID)
		assert.Equal(t, productID, receipt.ProductID)
		require.NotNil(t, receipt.SupplierID)
		assert.Equal(t, supplierID, *receipt.SupplierID)
		assert.Equal(t, "Acme", receipt.SupplierName)
		assert.Equal(t, int64(10), receipt.Quantity)
		assert.True(t, receipt.UnitCost.Equal(decimal.RequireFromString("2.5")))
		assert.True(t, receipt.SellingPrice.Equal(decimal.NewFromInt(4)))
		assert.True(t, receipt.ReceivedAt.Equal(received))
	})

	t.Run("receipt without supplier", func(t *testing.T) {
		receipt, err := receiptDocument{
			ID:        id.String(),
			ProductID: productID.String(),
			Quantity:  1,
		}.toDomain()
		require.NoError(t, err)

		assert.Nil(t, receipt.SupplierID)
		assert.Empty(t, receipt.SupplierName)
		assert.True(t, receipt.UnitCost.IsZero())
	})

	t.Run("rejects malformed product id", func(t *testing.T) {
		_, err := receiptDocument{ID: id.String(), ProductID: "x"}.toDomain()
		assert.ErrorContains(t, err, "invalid product id")
	})
}

func TestSaleLineDocument_ToDomain(t *testing.T) {
	saleID, productID := uuid.New(), uuid.New()
	sold := time.Date(2024, 3, 2, 14, 30, 0, 0, time.UTC)

	line, err := saleLineDocument{
		ID:            saleID.String(),
		InvoiceNumber: "INV-7",
		Cashier:       "alice",
		Status:        "partially_returned",
		SoldAt:        sold,
		Item: lineItemDocument{
			ProductID: productID.String(),
			Quantity:  3,
			UnitPrice: dec128(t, "4.25"),
		},
		LineIndex: 1,
	}.toDomain()
	require.NoError(t, err)

	assert.Equal(t, saleID, line.SaleID)
	assert.Equal(t, productID, line.ProductID)
	assert.Equal(t, "INV-7", line.InvoiceNumber)
	assert.Equal(t, "alice", line.Cashier)
	assert.Equal(t, int64(3), line.Quantity)
	assert.Equal(t, ledger.SaleStatusPartiallyReturned, line.Status)
	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("4.25")))
	assert.True(t, line.SoldAt.Equal(sold))
}

func TestReturnLineDocument_ToDomain(t *testing.T) {
	returnID, productID := uuid.New(), uuid.New()

	line, err := returnLineDocument{
		ID:              returnID.String(),
		ReferenceNumber: "RET-1",
		ProcessedBy:     "bob",
		ReturnedAt:      time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		Item: lineItemDocument{
			ProductID: productID.String(),
			Quantity:  2,
			UnitPrice: dec128(t, "4"),
		},
	}.toDomain()
	require.NoError(t, err)

	assert.Equal(t, returnID, line.ReturnID)
	assert.Equal(t, "RET-1", line.ReferenceNumber)
	assert.Equal(t, "bob", line.ProcessedBy)
	assert.Equal(t, int64(2), line.Quantity)

	_, err = returnLineDocument{ID: returnID.String(), Item: lineItemDocument{ProductID: "bad"}}.toDomain()
	assert.ErrorContains(t, err, "invalid product id")
}

func TestToDecimal_ZeroValue(t *testing.T) {
	d, err := toDecimal(primitive.Decimal128{})
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}
