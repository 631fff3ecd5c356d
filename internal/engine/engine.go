// Package engine orchestrates every ledger state transition. Risk-sensitive
// operations (borrow, collateral deposit) run in two phases: the tentative
// delta is validated and committed under the account store lock, the lock is
// released while the external risk scorer is consulted, and the delta is
// reverted afterwards only on an explicit high-risk verdict. The tentative
// state is therefore visible to concurrent operations between the phases;
// the store lock is never held across an external call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/defi-pool/defi_pool/internal/account"
	"github.com/defi-pool/defi_pool/internal/mintlog"
	"github.com/defi-pool/defi_pool/internal/oracle"
	"github.com/defi-pool/defi_pool/internal/policy"
	"github.com/defi-pool/defi_pool/internal/risk"
	"github.com/defi-pool/defi_pool/internal/token"
)

// custodyAccount is the token-contract account holding funds pulled into the
// pool's custody on deposit.
const custodyAccount = "pool"

// Advisory strings recorded on the account alongside operation outcomes.
const (
	adviceCollateralShort = "Collateral insufficient for current borrowed amount"
	adviceBorrowShort     = "Insufficient collateral to borrow requested amount"
	adviceWithdrawShort   = "Insufficient collateral to withdraw"
	adviceWithdrawBreach  = "Cannot withdraw: would breach minimum collateral"
	adviceWithdrawSuccess = "Collateral withdrawn successfully"
)

var (
	// ErrAmountNotPositive rejects zero or negative operation amounts.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrInsufficientBalance occurs when a repayment exceeds the stablecoin
	// balance on hand.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientBorrowed occurs when a repayment exceeds the
	// outstanding borrowed amount.
	ErrInsufficientBorrowed = errors.New("repay exceeds borrowed amount")

	// ErrHighRisk reports that the risk scorer rejected the operation and
	// the tentative state change was reverted.
	ErrHighRisk = errors.New("operation rejected as high risk")
)

// Engine owns the transition logic over the account store and its external
// collaborators.
type Engine struct {
	accounts *account.Store
	tokens   *token.Registry
	prices   oracle.PriceOracle
	gate     *risk.Gate
	mints    *mintlog.Log
	logger   *slog.Logger
}

// New wires a transition engine.
func New(accounts *account.Store, tokens *token.Registry, prices oracle.PriceOracle, gate *risk.Gate, mints *mintlog.Log, logger *slog.Logger) *Engine {
	return &Engine{
		accounts: accounts,
		tokens:   tokens,
		prices:   prices,
		gate:     gate,
		mints:    mints,
		logger:   logger,
	}
}

// Signup registers a user. It fails without side effects when the user
// already exists.
func (e *Engine) Signup(user, username string) error {
	if err := e.accounts.Signup(user, username); err != nil {
		return err
	}
	e.logger.Info("user signed up", "user", user, "username", username)
	return nil
}

// Deposit pulls amount of the token from the user into the pool's custody,
// mints the equivalent ledger credit, and only then updates internal
// bookkeeping and the mint log. A failed transfer or mint leaves the
// internal ledger untouched.
func (e *Engine) Deposit(ctx context.Context, user, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	contract, err := e.tokens.Contract(symbol)
	if err != nil {
		return err
	}

	if err := contract.TransferFrom(ctx, user, custodyAccount, amount); err != nil {
		return err
	}
	if err := contract.Mint(ctx, user, amount); err != nil {
		// The custody transfer already settled; there is no compensation
		// path, so surface the partial failure loudly.
		e.logger.Error("deposit mint failed after custody transfer settled",
			"user", user, "token", symbol, "amount", amount.String(), "error", err)
		return err
	}

	if err := e.accounts.Upsert(user, func(a *account.Account) error {
		return a.Adjust(account.FieldBalance, symbol, amount)
	}); err != nil {
		return err
	}
	e.mints.Append(user, symbol, amount)
	e.logger.Info("deposit committed", "user", user, "token", symbol, "amount", amount.String())
	return nil
}

// DepositCollateral adds amount of the token to the user's collateral. The
// increase is committed tentatively once the post-state satisfies the
// collateral policy, then reverted if the risk scorer flags the position.
func (e *Engine) DepositCollateral(ctx context.Context, user, symbol string, amount *big.Int) (risk.Verdict, error) {
	if amount == nil || amount.Sign() <= 0 {
		return risk.Verdict{}, ErrAmountNotPositive
	}

	// Phase 1: validate and tentatively commit under the store lock.
	err := e.accounts.Update(user, func(a *account.Account) error {
		collateralUSD := policy.USDValue(a.Collateral, e.prices)
		deltaUSD := new(big.Int).Mul(amount, e.prices.Price(symbol))
		postUSD := new(big.Int).Add(collateralUSD, deltaUSD)
		borrowedUSD := policy.USDValue(a.Borrowed, e.prices)
		if postUSD.Cmp(policy.RequiredCollateral(borrowedUSD)) < 0 {
			a.RiskAdvice = adviceCollateralShort
			return policy.ErrBelowMinimumCollateral
		}
		return a.Adjust(account.FieldCollateral, symbol, amount)
	})
	if err != nil {
		return risk.Verdict{}, err
	}

	// Phase 2: suspended on the scorer, lock released.
	verdict := e.evaluate(ctx, user)

	// Phase 3: revert the exact tentative delta on an explicit rejection.
	revert := new(big.Int).Neg(amount)
	if err := e.resolve(user, verdict, account.FieldCollateral, symbol, revert); err != nil {
		return verdict, err
	}
	e.logger.Info("collateral deposited", "user", user, "token", symbol,
		"amount", amount.String(), "verdict", verdict.Outcome.String())
	return verdict, nil
}

// Borrow increases the user's borrowed position by amount of the token. The
// increase is committed tentatively once collateral covers the post-borrow
// position, reverted on a high-risk verdict, and the borrowed credit is only
// booked (and mint-logged) after the external mint succeeds.
func (e *Engine) Borrow(ctx context.Context, user, symbol string, amount *big.Int) (risk.Verdict, error) {
	if amount == nil || amount.Sign() <= 0 {
		return risk.Verdict{}, ErrAmountNotPositive
	}
	contract, err := e.tokens.Contract(symbol)
	if err != nil {
		return risk.Verdict{}, err
	}

	// Phase 1: validate and tentatively commit under the store lock.
	deltaUSD := new(big.Int).Mul(amount, e.prices.Price(symbol))
	err = e.accounts.Update(user, func(a *account.Account) error {
		collateralUSD := policy.USDValue(a.Collateral, e.prices)
		borrowedUSD := policy.USDValue(a.Borrowed, e.prices)
		if err := policy.ValidateBorrow(collateralUSD, borrowedUSD, deltaUSD); err != nil {
			a.RiskAdvice = adviceBorrowShort
			return err
		}
		return a.Adjust(account.FieldBorrowed, symbol, amount)
	})
	if err != nil {
		return risk.Verdict{}, err
	}

	// Phase 2: suspended on the scorer, lock released.
	verdict := e.evaluate(ctx, user)

	// Phase 3.
	revert := new(big.Int).Neg(amount)
	if err := e.resolve(user, verdict, account.FieldBorrowed, symbol, revert); err != nil {
		return verdict, err
	}

	if err := contract.Mint(ctx, user, amount); err != nil {
		// Without the minted tokens the borrow never happened; take the
		// tentative principal back out.
		e.logger.Error("borrow mint failed, reverting", "user", user, "token", symbol,
			"amount", amount.String(), "error", err)
		if revertErr := e.accounts.Update(user, func(a *account.Account) error {
			return a.Adjust(account.FieldBorrowed, symbol, revert)
		}); revertErr != nil {
			return verdict, fmt.Errorf("revert after failed mint: %w", revertErr)
		}
		return verdict, err
	}

	if err := e.accounts.Update(user, func(a *account.Account) error {
		return a.Adjust(account.FieldBalance, symbol, amount)
	}); err != nil {
		return verdict, err
	}
	e.mints.Append(user, symbol, amount)
	e.logger.Info("borrow committed", "user", user, "token", symbol,
		"amount", amount.String(), "verdict", verdict.Outcome.String())
	return verdict, nil
}

// Repay pays amount of the token back against the borrowed position, drawing
// on the stablecoin balance. Single-phase: validated and applied inside one
// lock window.
func (e *Engine) Repay(user, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	return e.accounts.Update(user, func(a *account.Account) error {
		if a.Get(account.FieldBorrowed, symbol).Cmp(amount) < 0 {
			return ErrInsufficientBorrowed
		}
		if a.Get(account.FieldBalance, symbol).Cmp(amount) < 0 {
			return ErrInsufficientBalance
		}
		debit := new(big.Int).Neg(amount)
		if err := a.Adjust(account.FieldBorrowed, symbol, debit); err != nil {
			return err
		}
		return a.Adjust(account.FieldBalance, symbol, debit)
	})
}

// WithdrawCollateral removes amount of the token from the user's collateral
// when the remaining collateral still satisfies the policy for the borrowed
// position. Single-phase.
func (e *Engine) WithdrawCollateral(user, symbol string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountNotPositive
	}
	return e.accounts.Update(user, func(a *account.Account) error {
		if a.Get(account.FieldCollateral, symbol).Cmp(amount) < 0 {
			a.RiskAdvice = adviceWithdrawShort
			return policy.ErrInsufficientCollateral
		}
		collateralUSD := policy.USDValue(a.Collateral, e.prices)
		borrowedUSD := policy.USDValue(a.Borrowed, e.prices)
		deltaUSD := new(big.Int).Mul(amount, e.prices.Price(symbol))
		if err := policy.ValidateWithdrawal(collateralUSD, borrowedUSD, deltaUSD); err != nil {
			a.RiskAdvice = adviceWithdrawBreach
			return err
		}
		if err := a.Adjust(account.FieldCollateral, symbol, new(big.Int).Neg(amount)); err != nil {
			return err
		}
		a.RiskAdvice = adviceWithdrawSuccess
		return nil
	})
}

// evaluate aggregates the user's USD positions and consults the risk gate.
// It runs outside any store lock.
func (e *Engine) evaluate(ctx context.Context, user string) risk.Verdict {
	snap, ok := e.accounts.Snapshot(user)
	if !ok {
		return risk.Verdict{Outcome: risk.Unavailable}
	}
	return e.gate.Evaluate(ctx,
		policy.USDValue(snap.Collateral, e.prices),
		policy.USDValue(snap.Borrowed, e.prices),
		policy.USDValue(snap.Balances, e.prices),
		snap.CreditScore,
	)
}

// resolve applies the phase-3 decision: record the scorer's advice and, on
// an explicit high-risk verdict, apply the revert delta.
func (e *Engine) resolve(user string, verdict risk.Verdict, field account.Field, symbol string, revert *big.Int) error {
	return e.accounts.Update(user, func(a *account.Account) error {
		if verdict.Advice != "" {
			a.RiskAdvice = verdict.Advice
		}
		if verdict.Outcome != risk.HighRisk {
			return nil
		}
		if err := a.Adjust(field, symbol, revert); err != nil {
			return err
		}
		return ErrHighRisk
	})
}

// Account returns a deep-copied snapshot of the user's account.
func (e *Engine) Account(user string) (account.Account, bool) {
	return e.accounts.Snapshot(user)
}

// Users lists all registered users.
func (e *Engine) Users() []string {
	return e.accounts.Users()
}

// Username reports the stored username for the user.
func (e *Engine) Username(user string) (string, bool) {
	return e.accounts.Username(user)
}

// Balances returns the user's per-token stablecoin balances.
func (e *Engine) Balances(user string) (map[string]*big.Int, bool) {
	return e.accounts.Balances(user)
}

// TokenSupply reports the stablecoin supply held in the given token across
// all accounts.
func (e *Engine) TokenSupply(symbol string) *big.Int {
	return e.accounts.TokenSupply(symbol)
}
