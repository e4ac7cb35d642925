package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/shared/strategy"
)

// StrategyRegistry manages strategy registrations
type StrategyRegistry struct {
	mu             sync.RWMutex
	returnPolicies map[string]ledger.ReturnPolicy
	defaults       map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		returnPolicies: make(map[string]ledger.ReturnPolicy),
		defaults:       make(map[strategy.StrategyType]string),
	}
}

// RegisterReturnPolicy registers a return policy
func (r *StrategyRegistry) RegisterReturnPolicy(p ledger.ReturnPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.returnPolicies[name]; exists {
		return fmt.Errorf("%w: return policy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.returnPolicies[name] = p
	return nil
}

// GetReturnPolicy returns a return policy by name, or the default if name is empty
func (r *StrategyRegistry) GetReturnPolicy(name string) (ledger.ReturnPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeReturnPolicy]
		if name == "" {
			return nil, fmt.Errorf("%w: no default return policy set", shared.ErrNotFound)
		}
	}

	p, exists := r.returnPolicies[name]
	if !exists {
		return nil, fmt.Errorf("%w: return policy '%s' not found", shared.ErrNotFound, name)
	}
	return p, nil
}

// ListReturnPolicies returns all registered return policy names
func (r *StrategyRegistry) ListReturnPolicies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.returnPolicies))
	for name := range r.returnPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnregisterReturnPolicy removes a return policy
func (r *StrategyRegistry) UnregisterReturnPolicy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.returnPolicies[name]; !exists {
		return fmt.Errorf("%w: return policy '%s' not found", shared.ErrNotFound, name)
	}
	delete(r.returnPolicies, name)

	if r.defaults[strategy.StrategyTypeReturnPolicy] == name {
		delete(r.defaults, strategy.StrategyTypeReturnPolicy)
	}
	return nil
}

// SetDefault sets the default strategy for a strategy type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRegisteredLocked(strategyType, name) {
		return fmt.Errorf("%w: strategy '%s' of type '%s' not found", shared.ErrNotFound, name, strategyType)
	}

	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a strategy type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}

// IsRegistered returns true if a strategy with the given name is registered for the type
func (r *StrategyRegistry) IsRegistered(strategyType strategy.StrategyType, name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRegisteredLocked(strategyType, name)
}

// isRegisteredLocked checks registration without locking (caller must hold lock)
func (r *StrategyRegistry) isRegisteredLocked(strategyType strategy.StrategyType, name string) bool {
	switch strategyType {
	case strategy.StrategyTypeReturnPolicy:
		_, ok := r.returnPolicies[name]
		return ok
	default:
		return false
	}
}
