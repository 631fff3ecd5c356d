// Package mintlog keeps the append-only audit trail of every token-minting
// event attributable to a ledger operation.
package mintlog

import (
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry records one external mint. Entries are immutable once appended.
type Entry struct {
	ID       string
	User     string
	Token    string
	Amount   *big.Int
	MintedAt time.Time
}

// Log is the append-only mint record, queryable globally or per user.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog builds an empty mint log.
func NewLog() *Log {
	return &Log{}
}

// Append records a mint of amount to the user and returns the stored entry.
func (l *Log) Append(user, token string, amount *big.Int) Entry {
	entry := Entry{
		ID:       uuid.NewString(),
		User:     user,
		Token:    token,
		Amount:   new(big.Int).Set(amount),
		MintedAt: time.Now().UTC(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// All returns every entry in append order.
func (l *Log) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyEntries(l.entries)
}

// ByUser returns the entries minted to the given user, in append order.
func (l *Log) ByUser(user string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var matched []Entry
	for _, entry := range l.entries {
		if entry.User == user {
			matched = append(matched, entry)
		}
	}
	return copyEntries(matched)
}

// Len reports the number of appended entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func copyEntries(src []Entry) []Entry {
	out := make([]Entry, len(src))
	for i, entry := range src {
		entry.Amount = new(big.Int).Set(entry.Amount)
		out[i] = entry
	}
	return out
}
