// Package policy implements the collateralization rules applied to every
// risk-sensitive ledger transition: a borrowed position must be backed by at
// least 150% of its USD value in collateral.
package policy

import (
	"errors"
	"math/big"

	"github.com/defi-pool/defi_pool/internal/oracle"
)

var (
	// ErrInsufficientCollateral occurs when a withdrawal exceeds the
	// collateral on hand.
	ErrInsufficientCollateral = errors.New("insufficient collateral")

	// ErrBelowMinimumCollateral occurs when a post-operation position would
	// fall under the required collateralization ratio.
	ErrBelowMinimumCollateral = errors.New("collateral below required minimum")
)

var (
	ratioNumerator   = big.NewInt(3)
	ratioDenominator = big.NewInt(2)
)

// RequiredCollateral returns the minimum collateral backing the given
// borrowed amount: borrowed * 3 / 2, truncated toward zero.
func RequiredCollateral(borrowed *big.Int) *big.Int {
	required := new(big.Int).Mul(borrowed, ratioNumerator)
	return required.Quo(required, ratioDenominator)
}

// ValidateBorrow checks that the existing collateral covers the post-borrow
// position of borrowed + delta. Amounts are USD values.
func ValidateBorrow(collateral, borrowed, delta *big.Int) error {
	post := new(big.Int).Add(borrowed, delta)
	if collateral.Cmp(RequiredCollateral(post)) < 0 {
		return ErrBelowMinimumCollateral
	}
	return nil
}

// ValidateWithdrawal checks that delta can be removed from the collateral
// while the remainder still covers the borrowed position. Amounts are USD
// values.
func ValidateWithdrawal(collateral, borrowed, delta *big.Int) error {
	if collateral.Cmp(delta) < 0 {
		return ErrInsufficientCollateral
	}
	remaining := new(big.Int).Sub(collateral, delta)
	if remaining.Cmp(RequiredCollateral(borrowed)) < 0 {
		return ErrBelowMinimumCollateral
	}
	return nil
}

// USDValue aggregates a per-token position into integer USD using the
// oracle's fixed unit prices.
func USDValue(position map[string]*big.Int, prices oracle.PriceOracle) *big.Int {
	total := new(big.Int)
	for token, amount := range position {
		value := new(big.Int).Mul(amount, prices.Price(token))
		total.Add(total, value)
	}
	return total
}
