// Package mongodb serves the catalog and ledger reader ports from a MongoDB
// document store. Sales and returns embed their lines; readers unwind them
// into one domain line per product item.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopledger/backend/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	CollectionProducts      = "products"
	CollectionSuppliers     = "suppliers"
	CollectionStockReceipts = "stock_receipts"
	CollectionSales         = "sales"
	CollectionSalesReturns  = "sales_returns"
)

const pingTimeout = 5 * time.Second

// Client wraps the MongoDB client and the ledger database handle
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient connects to MongoDB and verifies the connection with a ping
func NewClient(ctx context.Context, cfg config.MongoDBConfig) (*Client, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	if cfg.Username != "" && cfg.Password != "" {
		clientOpts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthDB,
		})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return NewClientFrom(client, cfg.Database), nil
}

// NewClientFrom wraps an already connected client
func NewClientFrom(client *mongo.Client, database string) *Client {
	return &Client{
		client:   client,
		database: client.Database(database),
	}
}

// Database returns the database handle
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a collection handle
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Name identifies the store in health reports
func (c *Client) Name() string {
	return "mongodb"
}
