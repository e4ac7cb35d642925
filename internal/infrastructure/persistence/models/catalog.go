package models

import (
	"github.com/shopledger/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null"`
	NormalizedName string `gorm:"type:varchar(200);not null;uniqueIndex:idx_products_normalized_name"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		NormalizedName: m.NormalizedName,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:           p.Name,
		NormalizedName: p.NormalizedName,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *catalog.Supplier {
	return &catalog.Supplier{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier.
func SupplierModelFromDomain(s *catalog.Supplier) *SupplierModel {
	m := &SupplierModel{Name: s.Name}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
