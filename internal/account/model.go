package account

import (
	"errors"
	"math/big"
	"time"
)

// Field selects which per-token map of an account an adjustment targets.
type Field int

const (
	// FieldBalance addresses deposited and borrowed stablecoin credit.
	FieldBalance Field = iota
	// FieldCollateral addresses pledged collateral.
	FieldCollateral
	// FieldBorrowed addresses outstanding borrowed principal.
	FieldBorrowed
)

// ErrNegativeAmount indicates an adjustment that would drive a balance,
// collateral, or borrowed value below zero. The mutation is rejected before
// any state changes.
var ErrNegativeAmount = errors.New("adjustment would produce a negative amount")

// Account is the per-user ledger record: deposited balances, pledged
// collateral and outstanding borrowed principal, all per token. Amounts are
// non-negative arbitrary-precision integers; a token absent from a map reads
// as zero.
type Account struct {
	Balances    map[string]*big.Int
	Collateral  map[string]*big.Int
	Borrowed    map[string]*big.Int
	CreditScore *big.Int
	RiskAdvice  string
	Username    string
	CreatedAt   time.Time
}

func newAccount(username string, creditScore int64, now time.Time) *Account {
	return &Account{
		Balances:    make(map[string]*big.Int),
		Collateral:  make(map[string]*big.Int),
		Borrowed:    make(map[string]*big.Int),
		CreditScore: big.NewInt(creditScore),
		Username:    username,
		CreatedAt:   now,
	}
}

func (a *Account) field(field Field) map[string]*big.Int {
	switch field {
	case FieldCollateral:
		return a.Collateral
	case FieldBorrowed:
		return a.Borrowed
	default:
		return a.Balances
	}
}

// Get returns a copy of the stored amount for the token, zero if absent.
func (a *Account) Get(field Field, token string) *big.Int {
	if v, ok := a.field(field)[token]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Adjust applies a signed delta to the selected field. The result must stay
// non-negative; an underflowing subtraction is rejected with ErrNegativeAmount
// and leaves the account untouched.
func (a *Account) Adjust(field Field, token string, delta *big.Int) error {
	next := a.Get(field, token)
	next.Add(next, delta)
	if next.Sign() < 0 {
		return ErrNegativeAmount
	}
	a.field(field)[token] = next
	return nil
}

// clone deep-copies the account so snapshots stay immutable after release.
func (a *Account) clone() Account {
	out := Account{
		Balances:    cloneAmounts(a.Balances),
		Collateral:  cloneAmounts(a.Collateral),
		Borrowed:    cloneAmounts(a.Borrowed),
		CreditScore: new(big.Int).Set(a.CreditScore),
		RiskAdvice:  a.RiskAdvice,
		Username:    a.Username,
		CreatedAt:   a.CreatedAt,
	}
	return out
}

func cloneAmounts(src map[string]*big.Int) map[string]*big.Int {
	out := make(map[string]*big.Int, len(src))
	for token, amount := range src {
		out[token] = new(big.Int).Set(amount)
	}
	return out
}
