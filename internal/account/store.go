package account

import (
	"errors"
	"math/big"
	"sort"
	"sync"
	"time"
)

// defaultCreditScore is assigned to every account at creation and is not
// updated afterwards.
const defaultCreditScore = 700

var (
	// ErrUserExists occurs when signup is attempted for an existing user.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound occurs when an operation references an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// Store owns the in-memory account ledger. All access runs under one
// exclusive lock; callers mutate accounts through Update/Upsert closures so
// a validate-then-mutate sequence is atomic, and the raw account map is
// never exposed. Lock sections are short and never span an external call.
type Store struct {
	mu       sync.Mutex
	accounts map[string]*Account
}

// NewStore builds an empty account store.
func NewStore() *Store {
	return &Store{accounts: make(map[string]*Account)}
}

// Signup creates the account with the default credit score. It is the only
// caller-visible account creation path and fails if the user already exists,
// leaving state unchanged.
func (s *Store) Signup(user, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[user]; exists {
		return ErrUserExists
	}
	s.accounts[user] = newAccount(username, defaultCreditScore, time.Now().UTC())
	return nil
}

// Update runs fn on the user's account under the store lock and returns
// fn's error. Validation belongs before mutation inside fn; the store does
// not roll back what fn already changed.
func (s *Store) Update(user string, fn func(*Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user]
	if !ok {
		return ErrUserNotFound
	}
	return fn(acc)
}

// Upsert behaves like Update but creates a zeroed account with the default
// credit score when the user is unknown.
func (s *Store) Upsert(user string, fn func(*Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user]
	if !ok {
		acc = newAccount("", defaultCreditScore, time.Now().UTC())
		s.accounts[user] = acc
	}
	return fn(acc)
}

// Snapshot returns a deep copy of the user's account.
func (s *Store) Snapshot(user string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user]
	if !ok {
		return Account{}, false
	}
	return acc.clone(), true
}

// Username reports the stored username for the user.
func (s *Store) Username(user string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user]
	if !ok {
		return "", false
	}
	return acc.Username, true
}

// Users lists all registered user identifiers in sorted order.
func (s *Store) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.accounts))
	for user := range s.accounts {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// TokenSupply sums the stablecoin balances held in the given token across
// all accounts.
func (s *Store) TokenSupply(token string) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := new(big.Int)
	for _, acc := range s.accounts {
		if v, ok := acc.Balances[token]; ok {
			total.Add(total, v)
		}
	}
	return total
}

// Balances returns a copy of the user's per-token stablecoin balances.
func (s *Store) Balances(user string) (map[string]*big.Int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[user]
	if !ok {
		return nil, false
	}
	return cloneAmounts(acc.Balances), true
}
