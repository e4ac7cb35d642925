package catalog

import (
	"strings"

	"github.com/shopledger/backend/internal/domain/shared"
)

// Supplier is the counterparty named on stock receipts
type Supplier struct {
	shared.BaseEntity
	Name string
}

// NewSupplier creates a new supplier
func NewSupplier(name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	return &Supplier{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}
