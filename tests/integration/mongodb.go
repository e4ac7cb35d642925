package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopledger/backend/internal/infrastructure/config"
	"github.com/shopledger/backend/internal/infrastructure/persistence/mongodb"
	"github.com/shopledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const mongoTestDatabase = "shopledger_test"

var (
	sharedMongo    *tcmongodb.MongoDBContainer
	sharedMongoMu  sync.Mutex
	sharedMongoURI string
)

// NewSharedTestMongo connects to a MongoDB container shared by the package.
// The test database is dropped and re-indexed before it is handed out.
func NewSharedTestMongo(t *testing.T) *mongodb.Client {
	t.Helper()
	SkipIfShort(t)

	sharedMongoMu.Lock()
	defer sharedMongoMu.Unlock()

	ctx := context.Background()

	if sharedMongo == nil {
		container, err := tcmongodb.Run(ctx,
			"mongo:6",
			tcmongodb.WithUsername("test"),
			tcmongodb.WithPassword("test"),
		)
		require.NoError(t, err, "Failed to start MongoDB container")

		uri, err := container.ConnectionString(ctx)
		require.NoError(t, err, "Failed to get connection string")

		sharedMongo = container
		sharedMongoURI = uri
	}

	client, err := mongodb.NewClient(ctx, config.MongoDBConfig{
		URI:            sharedMongoURI,
		Database:       mongoTestDatabase,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
	})
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() {
		_ = client.Close(context.Background())
	})

	require.NoError(t, client.Database().Drop(ctx))
	require.NoError(t, mongodb.EnsureIndexes(ctx, client))

	return client
}

// CleanupSharedMongo terminates the shared MongoDB container
func CleanupSharedMongo() {
	sharedMongoMu.Lock()
	defer sharedMongoMu.Unlock()

	if sharedMongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedMongo.Terminate(ctx)
		sharedMongo = nil
		sharedMongoURI = ""
	}
}

// SeedMongo writes fx as documents. Sales and returns embed their lines.
func SeedMongo(t *testing.T, client *mongodb.Client, fx *testutil.LedgerFixture) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	insert := func(collection string, docs []interface{}) {
		if len(docs) == 0 {
			return
		}
		_, err := client.Collection(collection).InsertMany(ctx, docs)
		require.NoError(t, err, "Failed to seed %s", collection)
	}

	var products []interface{}
	for _, p := range fx.Products {
		products = append(products, bson.M{
			"_id":             p.ID.String(),
			"name":            p.Name,
			"normalized_name": p.NormalizedName,
			"created_at":      p.CreatedAt,
			"updated_at":      p.UpdatedAt,
		})
	}
	insert(mongodb.CollectionProducts, products)

	var suppliers []interface{}
	for _, s := range fx.Suppliers {
		suppliers = append(suppliers, bson.M{"_id": s.ID.String(), "name": s.Name})
	}
	insert(mongodb.CollectionSuppliers, suppliers)

	var receipts []interface{}
	for _, r := range fx.Receipts {
		doc := bson.M{
			"_id":              r.ID.String(),
			"product_id":       r.ProductID.String(),
			"reference_number": r.ReferenceNumber,
			"quantity":         r.Quantity,
			"unit_cost":        decimal128(t, r.UnitCost),
			"selling_price":    decimal128(t, r.SellingPrice),
			"received_at":      r.ReceivedAt,
		}
		if r.SupplierID != nil {
			doc["supplier_id"] = r.SupplierID.String()
		}
		receipts = append(receipts, doc)
	}
	insert(mongodb.CollectionStockReceipts, receipts)

	var sales []interface{}
	for _, s := range fx.Sales {
		items := bson.A{}
		for _, it := range s.Items {
			items = append(items, bson.M{
				"product_id": it.ProductID.String(),
				"quantity":   it.Quantity,
				"unit_price": decimal128(t, it.UnitPrice),
			})
		}
		sales = append(sales, bson.M{
			"_id":            s.ID.String(),
			"invoice_number": s.InvoiceNumber,
			"cashier":        s.Cashier,
			"status":         string(s.Status),
			"sold_at":        s.SoldAt,
			"items":          items,
		})
	}
	insert(mongodb.CollectionSales, sales)

	var returns []interface{}
	for _, r := range fx.Returns {
		items := bson.A{}
		for _, it := range r.Items {
			items = append(items, bson.M{
				"product_id": it.ProductID.String(),
				"quantity":   it.Quantity,
				"unit_price": decimal128(t, it.UnitPrice),
			})
		}
		returns = append(returns, bson.M{
			"_id":              r.ID.String(),
			"reference_number": r.ReferenceNumber,
			"processed_by":     r.ProcessedBy,
			"status":           r.Status,
			"returned_at":      r.ReturnedAt,
			"items":            items,
		})
	}
	insert(mongodb.CollectionSalesReturns, returns)
}

func decimal128(t *testing.T, d decimal.Decimal) primitive.Decimal128 {
	t.Helper()
	out, err := primitive.ParseDecimal128(d.String())
	require.NoError(t, err)
	return out
}
