package ledger

import (
	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/ledger"
)

// ProductLedgerQuery selects the ledger to reconstruct
type ProductLedgerQuery struct {
	// ProductName is matched case-insensitively with whitespace collapsed
	ProductName string
	// SupplierID restricts receipts to one supplier when set
	SupplierID *uuid.UUID
	// ReturnPolicy names the policy to apply. Empty uses the default.
	ReturnPolicy string
}

// ProductLedgerResult is a reconstructed ledger with the identity it was built for
type ProductLedgerResult struct {
	ProductID    uuid.UUID
	ReturnPolicy string
	Ledger       ledger.Ledger
}

// LedgerExport is a rendered ledger document
type LedgerExport struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReturnPolicyInfo describes a selectable return policy
type ReturnPolicyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}
