package engine

import "math/big"

// SignupRequest registers a user identity with a display name.
type SignupRequest struct {
	User     string `json:"user"`
	Username string `json:"username"`
}

// AmountRequest carries a (user, token, amount) operation payload.
type AmountRequest struct {
	User   string   `json:"user"`
	Token  string   `json:"token"`
	Amount *big.Int `json:"amount"`
}

// OperationResponse reports the outcome of a ledger operation, including the
// scorer verdict for risk-gated transitions.
type OperationResponse struct {
	User    string `json:"user"`
	Token   string `json:"token,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Verdict string `json:"verdict,omitempty"`
	Advice  string `json:"advice,omitempty"`
}

// AccountResponse is the read-model snapshot of one account.
type AccountResponse struct {
	User        string            `json:"user"`
	Username    string            `json:"username,omitempty"`
	Balances    map[string]string `json:"balances"`
	Collateral  map[string]string `json:"collateral"`
	Borrowed    map[string]string `json:"borrowed"`
	CreditScore string            `json:"credit_score"`
	RiskAdvice  string            `json:"risk_advice,omitempty"`
}

func amountStrings(amounts map[string]*big.Int) map[string]string {
	out := make(map[string]string, len(amounts))
	for token, amount := range amounts {
		out[token] = amount.String()
	}
	return out
}
