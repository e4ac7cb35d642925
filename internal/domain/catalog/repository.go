package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines read access to the product catalog
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByNormalizedName finds the product whose lookup key equals key.
	// Callers pass the result of NormalizeName.
	FindByNormalizedName(ctx context.Context, key string) (*Product, error)
}

// SupplierRepository defines read access to suppliers
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
}
