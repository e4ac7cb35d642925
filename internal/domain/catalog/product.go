package catalog

import (
	"strings"
	"unicode"

	"github.com/shopledger/backend/internal/domain/shared"
)

// Product is a catalog entry. NormalizedName is the unique lookup key used to
// resolve free-text product names coming from API callers.
type Product struct {
	shared.BaseEntity
	Name           string
	NormalizedName string
}

// NewProduct creates a new product from a display name
func NewProduct(name string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	return &Product{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           strings.TrimSpace(name),
		NormalizedName: NormalizeName(name),
	}, nil
}

// NormalizeName folds a product name into its catalog key: surrounding
// whitespace is dropped, inner whitespace runs collapse to one space and
// letters are lowercased.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func validateProductName(name string) error {
	if NormalizeName(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
