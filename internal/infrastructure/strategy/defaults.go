package strategy

import (
	"github.com/shopledger/backend/internal/domain/shared/strategy"
	"github.com/shopledger/backend/internal/infrastructure/strategy/returns"
)

// DefaultReturnPolicy is used when configuration does not name one
const DefaultReturnPolicy = "exclude"

// NewRegistryWithDefaults creates a new registry with the built-in return
// policies registered and "exclude" as the default.
func NewRegistryWithDefaults() (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	if err := r.RegisterReturnPolicy(returns.NewExcludeReturnPolicy()); err != nil {
		return nil, err
	}
	if err := r.RegisterReturnPolicy(returns.NewReplenishReturnPolicy()); err != nil {
		return nil, err
	}

	if err := r.SetDefault(strategy.StrategyTypeReturnPolicy, DefaultReturnPolicy); err != nil {
		return nil, err
	}

	return r, nil
}

// NewRegistryWithReturnPolicy creates a default registry whose default
// return policy is name. An empty name keeps DefaultReturnPolicy.
func NewRegistryWithReturnPolicy(name string) (*StrategyRegistry, error) {
	r, err := NewRegistryWithDefaults()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return r, nil
	}
	if err := r.SetDefault(strategy.StrategyTypeReturnPolicy, name); err != nil {
		return nil, err
	}
	return r, nil
}
