package token

import (
	"context"
	"errors"
	"math/big"
)

var (
	// ErrTransferFailed indicates the external contract refused or failed a
	// transfer; no partial effect may be assumed.
	ErrTransferFailed = errors.New("token transfer failed")

	// ErrMintFailed indicates the external contract refused or failed a mint.
	ErrMintFailed = errors.New("token mint failed")

	// ErrInsufficientFunds indicates the source balance cannot cover the
	// requested amount.
	ErrInsufficientFunds = errors.New("insufficient token balance")

	// ErrInsufficientAllowance indicates the spender's approved allowance
	// cannot cover the requested amount.
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
)

// Contract is the boundary to the external token contract that performs real
// transfers and minting. Failures surface as typed errors so partial-failure
// states (a transfer that succeeded before a mint that did not) stay
// observable at the call site.
type Contract interface {
	// TransferFrom moves amount from the owner to the recipient, drawing on
	// the allowance the owner granted the recipient.
	TransferFrom(ctx context.Context, from, to string, amount *big.Int) error
	// Mint credits amount to the recipient and grows the total supply.
	Mint(ctx context.Context, to string, amount *big.Int) error
	// BalanceOf reports the owner's balance, zero for unknown owners.
	BalanceOf(ctx context.Context, owner string) (*big.Int, error)
	// TotalSupply reports the minted supply of the token.
	TotalSupply(ctx context.Context) (*big.Int, error)
}
