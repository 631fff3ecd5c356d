package token

import (
	"context"
	"fmt"
	"math/big"
	"sync"
)

type allowanceKey struct {
	owner   string
	spender string
}

// InMemory is a concurrency-safe token contract with DIP20-style semantics:
// balances, owner→spender allowances, and a supply that grows on mint. It
// stands in for the on-chain contract during local runs and tests.
type InMemory struct {
	mu          sync.Mutex
	symbol      string
	address     string
	totalSupply *big.Int
	balances    map[string]*big.Int
	allowances  map[allowanceKey]*big.Int
}

// NewInMemory builds an empty in-memory contract for the token symbol bound
// to the given contract address.
func NewInMemory(symbol, address string) *InMemory {
	return &InMemory{
		symbol:      symbol,
		address:     address,
		totalSupply: new(big.Int),
		balances:    make(map[string]*big.Int),
		allowances:  make(map[allowanceKey]*big.Int),
	}
}

// Symbol reports the token symbol the contract manages.
func (c *InMemory) Symbol() string { return c.symbol }

// Address reports the bound contract address.
func (c *InMemory) Address() string { return c.address }

// Approve grants the spender an allowance over the owner's balance,
// replacing any previous grant.
func (c *InMemory) Approve(owner, spender string, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowances[allowanceKey{owner: owner, spender: spender}] = new(big.Int).Set(amount)
}

// Allowance reports the remaining allowance the owner granted the spender.
func (c *InMemory) Allowance(owner, spender string) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// TransferFrom moves amount from the owner to the recipient, consuming the
// allowance the owner granted the recipient.
func (c *InMemory) TransferFrom(_ context.Context, from, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrTransferFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := allowanceKey{owner: from, spender: to}
	allowed := c.allowances[key]
	if allowed == nil || allowed.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s -> %s", ErrInsufficientAllowance, from, to)
	}

	balance := c.balances[from]
	if balance == nil || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: owner %s", ErrInsufficientFunds, from)
	}

	c.balances[from] = new(big.Int).Sub(balance, amount)
	c.credit(to, amount)
	c.allowances[key] = new(big.Int).Sub(allowed, amount)
	return nil
}

// Mint credits amount to the recipient and grows the total supply.
func (c *InMemory) Mint(_ context.Context, to string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrMintFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.credit(to, amount)
	c.totalSupply = new(big.Int).Add(c.totalSupply, amount)
	return nil
}

// BalanceOf reports the owner's balance, zero when the owner is unknown.
func (c *InMemory) BalanceOf(_ context.Context, owner string) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.balances[owner]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

// TotalSupply reports the minted supply.
func (c *InMemory) TotalSupply(_ context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.totalSupply), nil
}

func (c *InMemory) credit(owner string, amount *big.Int) {
	current := c.balances[owner]
	if current == nil {
		current = new(big.Int)
	}
	c.balances[owner] = new(big.Int).Add(current, amount)
}
