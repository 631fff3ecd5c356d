package token

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

func TestMintGrowsSupplyAndBalance(t *testing.T) {
	c := NewInMemory("USDC", "0xusdc")
	ctx := context.Background()

	if err := c.Mint(ctx, "alice", big.NewInt(1_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	balance, err := c.BalanceOf(ctx, "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("expected balance 1000, got %s", balance)
	}

	supply, err := c.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("expected supply 1000, got %s", supply)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	c := NewInMemory("USDC", "0xusdc")
	ctx := context.Background()

	if err := c.Mint(ctx, "alice", big.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	c.Approve("alice", "pool", big.NewInt(300))

	if err := c.TransferFrom(ctx, "alice", "pool", big.NewInt(200)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := c.Allowance("alice", "pool"); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected remaining allowance 100, got %s", got)
	}
	poolBalance, _ := c.BalanceOf(ctx, "pool")
	if poolBalance.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("expected pool balance 200, got %s", poolBalance)
	}

	err := c.TransferFrom(ctx, "alice", "pool", big.NewInt(150))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
}

func TestTransferFromRequiresBalance(t *testing.T) {
	c := NewInMemory("USDC", "0xusdc")
	ctx := context.Background()

	c.Approve("alice", "pool", big.NewInt(1_000))
	err := c.TransferFrom(ctx, "alice", "pool", big.NewInt(100))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestBalanceOfUnknownOwnerIsZero(t *testing.T) {
	c := NewInMemory("USDC", "0xusdc")
	balance, err := c.BalanceOf(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Sign() != 0 {
		t.Fatalf("expected zero, got %s", balance)
	}
}
