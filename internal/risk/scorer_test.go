package risk

import (
	"math/big"
	"strings"
	"testing"
)

func TestScorerClearsHealthyPosition(t *testing.T) {
	scorer := NewLogisticScorer()

	resp := scorer.Score(Request{
		Volatility:  big.NewInt(10), // 0.01 descaled
		Collateral:  big.NewInt(1_500_000),
		Borrowed:    big.NewInt(10_000),
		Deposits:    big.NewInt(2_000_000),
		CreditScore: big.NewInt(850),
	})

	if resp.RiskScore != 0 {
		t.Fatalf("expected safe verdict, got score %d (prob %.4f)", resp.RiskScore, resp.Probability)
	}
	if resp.Advice != "Safe to borrow" {
		t.Fatalf("unexpected advice: %q", resp.Advice)
	}
	if resp.Probability >= 0.5 {
		t.Fatalf("expected probability below 0.5, got %.4f", resp.Probability)
	}
}

func TestScorerFlagsOverextendedPosition(t *testing.T) {
	scorer := NewLogisticScorer()

	resp := scorer.Score(Request{
		Volatility:  big.NewInt(500), // 0.5 descaled, the clamp ceiling
		Collateral:  big.NewInt(50_000),
		Borrowed:    big.NewInt(900_000),
		Deposits:    big.NewInt(100_000),
		CreditScore: big.NewInt(300),
	})

	if resp.RiskScore != 1 {
		t.Fatalf("expected high-risk verdict, got score %d (prob %.4f)", resp.RiskScore, resp.Probability)
	}
	if !strings.HasPrefix(resp.Advice, "High risk") {
		t.Fatalf("unexpected advice: %q", resp.Advice)
	}
	if resp.Probability < 0.5 {
		t.Fatalf("expected probability of at least 0.5, got %.4f", resp.Probability)
	}
}

func TestScorerHandlesNilFeatures(t *testing.T) {
	scorer := NewLogisticScorer()
	resp := scorer.Score(Request{})
	if resp.RiskScore != 0 && resp.RiskScore != 1 {
		t.Fatalf("unexpected score %d", resp.RiskScore)
	}
	if resp.Advice == "" {
		t.Fatalf("expected advice for empty request")
	}
}
