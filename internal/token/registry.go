package token

import (
	"errors"
	"sync"
)

// ErrUnknownToken occurs when an operation references a token that has not
// been registered.
var ErrUnknownToken = errors.New("unknown token")

// ContractFactory builds the Contract binding for a newly registered token.
type ContractFactory func(symbol, address string) Contract

// Registry tracks the supported tokens in registration order together with
// the address of the external contract backing each one. Registration is
// idempotent-by-overwrite for the address; the contract binding and the
// ordering are created once and never removed.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	addresses map[string]string
	contracts map[string]Contract
	factory   ContractFactory
}

// NewRegistry builds an empty registry. A nil factory binds each token to a
// fresh in-memory contract.
func NewRegistry(factory ContractFactory) *Registry {
	if factory == nil {
		factory = func(symbol, address string) Contract {
			return NewInMemory(symbol, address)
		}
	}
	return &Registry{
		addresses: make(map[string]string),
		contracts: make(map[string]Contract),
		factory:   factory,
	}
}

// Register records the token with its contract address. Re-registration
// overwrites the address and keeps the existing contract binding and order.
func (r *Registry) Register(symbol, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.addresses[symbol]; !exists {
		r.order = append(r.order, symbol)
		r.contracts[symbol] = r.factory(symbol, address)
	}
	r.addresses[symbol] = address
}

// Contract resolves the contract bound to the token symbol.
func (r *Registry) Contract(symbol string) (Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contract, ok := r.contracts[symbol]
	if !ok {
		return nil, ErrUnknownToken
	}
	return contract, nil
}

// Address reports the registered contract address for the token symbol.
func (r *Registry) Address(symbol string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	address, ok := r.addresses[symbol]
	return address, ok
}

// Supported reports whether the token symbol has been registered.
func (r *Registry) Supported(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.addresses[symbol]
	return ok
}

// Symbols lists the registered token symbols in registration order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
