package mintlog

import (
	"math/big"
	"testing"
)

func TestAppendPreservesOrderAndFilters(t *testing.T) {
	log := NewLog()

	log.Append("alice", "USDC", big.NewInt(100))
	log.Append("bob", "USDC", big.NewInt(200))
	log.Append("alice", "DAI", big.NewInt(300))

	all := log.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].User != "alice" || all[1].User != "bob" || all[2].Token != "DAI" {
		t.Fatalf("entries out of append order: %+v", all)
	}

	aliceEntries := log.ByUser("alice")
	if len(aliceEntries) != 2 {
		t.Fatalf("expected 2 alice entries, got %d", len(aliceEntries))
	}
	if aliceEntries[1].Amount.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("expected amount 300, got %s", aliceEntries[1].Amount)
	}

	if entries := log.ByUser("carol"); len(entries) != 0 {
		t.Fatalf("expected no entries for carol, got %d", len(entries))
	}
}

func TestEntriesAreImmutableCopies(t *testing.T) {
	log := NewLog()
	log.Append("alice", "USDC", big.NewInt(100))

	all := log.All()
	all[0].Amount.SetInt64(999)

	fresh := log.All()
	if fresh[0].Amount.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("mutation leaked into the log: %s", fresh[0].Amount)
	}
}
