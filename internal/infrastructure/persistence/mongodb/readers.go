package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Only approved returns are read, matching the relational store.
const returnStatusApproved = "approved"

// ProductRepository implements catalog.ProductRepository
type ProductRepository struct {
	products *mongo.Collection
}

// NewProductRepository creates a product repository on client's database
func NewProductRepository(client *Client) *ProductRepository {
	return &ProductRepository{products: client.Collection(CollectionProducts)}
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// FindByNormalizedName finds a product by its lookup key
func (r *ProductRepository) FindByNormalizedName(ctx context.Context, key string) (*catalog.Product, error) {
	return r.findOne(ctx, bson.M{"normalized_name": key})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*catalog.Product, error) {
	var doc productDocument
	if err := r.products.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain()
}

// SupplierRepository implements catalog.SupplierRepository
type SupplierRepository struct {
	suppliers *mongo.Collection
}

// NewSupplierRepository creates a supplier repository on client's database
func NewSupplierRepository(client *Client) *SupplierRepository {
	return &SupplierRepository{suppliers: client.Collection(CollectionSuppliers)}
}

// FindByID finds a supplier by its ID
func (r *SupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	var doc supplierDocument
	if err := r.suppliers.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return doc.toDomain()
}

// ReceiptReader implements ledger.ReceiptReader
type ReceiptReader struct {
	receipts *mongo.Collection
}

// NewReceiptReader creates a receipt reader on client's database
func NewReceiptReader(client *Client) *ReceiptReader {
	return &ReceiptReader{receipts: client.Collection(CollectionStockReceipts)}
}

// ListReceipts returns the product's receipts with supplier names attached
func (r *ReceiptReader) ListReceipts(ctx context.Context, filter ledger.ReceiptFilter) ([]ledger.StockReceipt, error) {
	cursor, err := r.receipts.Aggregate(ctx, receiptPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("aggregate stock receipts: %w", err)
	}

	var docs []receiptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock receipts: %w", err)
	}

	out := make([]ledger.StockReceipt, 0, len(docs))
	for _, doc := range docs {
		receipt, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, receipt)
	}
	return out, nil
}

// SaleReader implements ledger.SaleReader
type SaleReader struct {
	sales *mongo.Collection
}

// NewSaleReader creates a sale reader on client's database
func NewSaleReader(client *Client) *SaleReader {
	return &SaleReader{sales: client.Collection(CollectionSales)}
}

// ListSaleLines returns the product's lines of sales in one of statuses
func (r *SaleReader) ListSaleLines(ctx context.Context, productID uuid.UUID, statuses []ledger.SaleStatus) ([]ledger.SaleLine, error) {
	if len(statuses) == 0 {
		return []ledger.SaleLine{}, nil
	}

	cursor, err := r.sales.Aggregate(ctx, saleLinePipeline(productID, statuses))
	if err != nil {
		return nil, fmt.Errorf("aggregate sale lines: %w", err)
	}

	var docs []saleLineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sale lines: %w", err)
	}

	out := make([]ledger.SaleLine, 0, len(docs))
	for _, doc := range docs {
		line, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// ReturnReader implements ledger.ReturnReader
type ReturnReader struct {
	returns *mongo.Collection
}

// NewReturnReader creates a return reader on client's database
func NewReturnReader(client *Client) *ReturnReader {
	return &ReturnReader{returns: client.Collection(CollectionSalesReturns)}
}

// ListReturnLines returns the product's lines of approved returns
func (r *ReturnReader) ListReturnLines(ctx context.Context, productID uuid.UUID) ([]ledger.ReturnLine, error) {
	cursor, err := r.returns.Aggregate(ctx, returnLinePipeline(productID))
	if err != nil {
		return nil, fmt.Errorf("aggregate return lines: %w", err)
	}

	var docs []returnLineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode return lines: %w", err)
	}

	out := make([]ledger.ReturnLine, 0, len(docs))
	for _, doc := range docs {
		line, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func receiptPipeline(filter ledger.ReceiptFilter) mongo.Pipeline {
	match := bson.D{{Key: "product_id", Value: filter.ProductID.String()}}
	if filter.SupplierID != nil {
		match = append(match, bson.E{Key: "supplier_id", Value: filter.SupplierID.String()})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{
			{Key: "received_at", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: CollectionSuppliers},
			{Key: "localField", Value: "supplier_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "supplier"},
		}}},
	}
}

// saleLinePipeline matches sales carrying the product, unwinds their items
// keeping the item position, and drops items of other products.
func saleLinePipeline(productID uuid.UUID, statuses []ledger.SaleStatus) mongo.Pipeline {
	names := make(bson.A, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	pid := productID.String()

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: bson.D{{Key: "$in", Value: names}}},
			{Key: "items.product_id", Value: pid},
		}}},
		unwindItems(),
		{{Key: "$match", Value: bson.D{{Key: "items.product_id", Value: pid}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "sold_at", Value: 1},
			{Key: "_id", Value: 1},
			{Key: "line_index", Value: 1},
		}}},
	}
}

func returnLinePipeline(productID uuid.UUID) mongo.Pipeline {
	pid := productID.String()

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: returnStatusApproved},
			{Key: "items.product_id", Value: pid},
		}}},
		unwindItems(),
		{{Key: "$match", Value: bson.D{{Key: "items.product_id", Value: pid}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "returned_at", Value: 1},
			{Key: "_id", Value: 1},
			{Key: "line_index", Value: 1},
		}}},
	}
}

func unwindItems() bson.D {
	return bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$items"},
		{Key: "includeArrayIndex", Value: "line_index"},
	}}}
}

var (
	_ catalog.ProductRepository  = (*ProductRepository)(nil)
	_ catalog.SupplierRepository = (*SupplierRepository)(nil)
	_ ledger.ReceiptReader       = (*ReceiptReader)(nil)
	_ ledger.SaleReader          = (*SaleReader)(nil)
	_ ledger.ReturnReader        = (*ReturnReader)(nil)
)
