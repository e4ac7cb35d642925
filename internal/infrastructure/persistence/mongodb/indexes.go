package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexSpecs lists the indexes each collection needs for ledger reads
func indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionProducts: {
			{
				Keys:    bson.D{{Key: "normalized_name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_products_normalized_name"),
			},
		},
		CollectionStockReceipts: {
			{
				Keys: bson.D{
					{Key: "product_id", Value: 1},
					{Key: "received_at", Value: 1},
				},
				Options: options.Index().SetName("idx_stock_receipts_product_received"),
			},
		},
		CollectionSales: {
			{
				Keys: bson.D{
					{Key: "items.product_id", Value: 1},
					{Key: "sold_at", Value: 1},
				},
				Options: options.Index().SetName("idx_sales_item_product_sold"),
			},
			{
				Keys:    bson.D{{Key: "invoice_number", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("idx_sales_invoice_number"),
			},
		},
		CollectionSalesReturns: {
			{
				Keys: bson.D{
					{Key: "items.product_id", Value: 1},
					{Key: "returned_at", Value: 1},
				},
				Options: options.Index().SetName("idx_sales_returns_item_product_returned"),
			},
		},
	}
}

// EnsureIndexes creates the ledger indexes. Existing indexes with the same
// definition are left alone by the server.
func EnsureIndexes(ctx context.Context, client *Client) error {
	for collection, models := range indexSpecs() {
		if _, err := client.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
