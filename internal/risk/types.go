package risk

import "math/big"

// Outcome classifies a risk evaluation.
type Outcome int

const (
	// Safe clears the proposed position.
	Safe Outcome = iota
	// HighRisk rejects the proposed position; callers revert.
	HighRisk
	// Unavailable means no verdict could be obtained. Operations proceed:
	// the scorer is advisory and its absence never blocks activity.
	Unavailable
)

// String reports the outcome name for logs.
func (o Outcome) String() string {
	switch o {
	case Safe:
		return "safe"
	case HighRisk:
		return "high_risk"
	default:
		return "unavailable"
	}
}

// Verdict is the interpreted result of one risk evaluation.
type Verdict struct {
	Outcome     Outcome
	Probability float64
	Advice      string
}

// Request is the wire payload sent to the risk scorer. USD values are
// integers; volatility is the borrowed/deposits ratio scaled by 1000 and
// clamped to [10, 500].
type Request struct {
	Volatility  *big.Int `json:"volatility"`
	Collateral  *big.Int `json:"collateral"`
	Borrowed    *big.Int `json:"borrowed"`
	Deposits    *big.Int `json:"deposits"`
	CreditScore *big.Int `json:"credit_score"`
}

// Response is the scorer's wire reply: risk_score 0 (safe) or 1 (high risk)
// plus human-readable advice.
type Response struct {
	RiskScore   int     `json:"risk_score"`
	Advice      string  `json:"advice"`
	Probability float64 `json:"probability"`
}
