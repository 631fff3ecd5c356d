// Package crowdfund keeps the contribution pool: a parallel sub-ledger of
// per-token totals and per-user contributions, independent of the lending
// accounts. It shares only the external mint path and the mint log.
package crowdfund

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"github.com/defi-pool/defi_pool/internal/mintlog"
	"github.com/defi-pool/defi_pool/internal/token"
)

// ErrAmountNotPositive rejects zero or negative contribution amounts.
var ErrAmountNotPositive = errors.New("amount must be positive")

// Contribution reports the pool state after one recorded contribution.
type Contribution struct {
	User       string
	Token      string
	Amount     *big.Int
	TokenTotal *big.Int
	Minted     bool
}

// Service owns the contribution pool state under its own lock.
type Service struct {
	mu           sync.Mutex
	funds        map[string]*big.Int
	contributors map[string]map[string]*big.Int

	tokens *token.Registry
	mints  *mintlog.Log
	logger *slog.Logger
}

// NewService builds an empty contribution pool.
func NewService(tokens *token.Registry, mints *mintlog.Log, logger *slog.Logger) *Service {
	return &Service{
		funds:        make(map[string]*big.Int),
		contributors: make(map[string]map[string]*big.Int),
		tokens:       tokens,
		mints:        mints,
		logger:       logger,
	}
}

// Contribute records the contribution atomically, then mints the reward to
// the contributor outside the lock. The contribution stands even when the
// mint fails; the mint-log entry is appended only on mint success. No
// collateral or risk checks apply to this path.
func (s *Service) Contribute(ctx context.Context, user, symbol string, amount *big.Int) (Contribution, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Contribution{}, ErrAmountNotPositive
	}
	contract, err := s.tokens.Contract(symbol)
	if err != nil {
		return Contribution{}, err
	}

	s.mu.Lock()
	total := s.funds[symbol]
	if total == nil {
		total = new(big.Int)
	}
	total = new(big.Int).Add(total, amount)
	s.funds[symbol] = total

	byToken := s.contributors[user]
	if byToken == nil {
		byToken = make(map[string]*big.Int)
		s.contributors[user] = byToken
	}
	current := byToken[symbol]
	if current == nil {
		current = new(big.Int)
	}
	byToken[symbol] = new(big.Int).Add(current, amount)
	s.mu.Unlock()

	result := Contribution{
		User:       user,
		Token:      symbol,
		Amount:     new(big.Int).Set(amount),
		TokenTotal: new(big.Int).Set(total),
	}

	if err := contract.Mint(ctx, user, amount); err != nil {
		s.logger.Error("contribution mint failed", "user", user, "token", symbol,
			"amount", amount.String(), "error", err)
		return result, err
	}
	s.mints.Append(user, symbol, amount)
	result.Minted = true
	return result, nil
}

// Snapshot returns deep copies of the per-token totals and the per-user
// contribution breakdown.
func (s *Service) Snapshot() (map[string]*big.Int, map[string]map[string]*big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	funds := make(map[string]*big.Int, len(s.funds))
	for symbol, total := range s.funds {
		funds[symbol] = new(big.Int).Set(total)
	}

	contributors := make(map[string]map[string]*big.Int, len(s.contributors))
	for user, byToken := range s.contributors {
		copied := make(map[string]*big.Int, len(byToken))
		for symbol, amount := range byToken {
			copied[symbol] = new(big.Int).Set(amount)
		}
		contributors[user] = copied
	}
	return funds, contributors
}
