package risk

import (
	"fmt"
	"math"
	"math/big"
)

// Scorer produces a verdict for a proposed position. The model is pluggable
// so it can be swapped or stubbed without touching the gate or the ledger.
type Scorer interface {
	Score(req Request) Response
}

// LogisticScorer is a fixed logistic-regression model over five features:
// volatility (descaled), collateral, borrowed, deposits, and credit score.
type LogisticScorer struct {
	means     [5]float64
	stds      [5]float64
	weights   [5]float64
	intercept float64
}

// NewLogisticScorer builds the scorer with the production model constants.
func NewLogisticScorer() *LogisticScorer {
	return &LogisticScorer{
		means:     [5]float64{0.254960, 774717.027074, 499839.415540, 1000172.144719, 574.696362},
		stds:      [5]float64{0.141482, 418514.422291, 288655.995022, 577065.613148, 158.832794},
		weights:   [5]float64{1.893918, -1.209705, 0.795901, 0.000843, -1.698044},
		intercept: 2.262179,
	}
}

// Score classifies the request: probability >= 0.5 is high risk.
func (s *LogisticScorer) Score(req Request) Response {
	features := [5]float64{
		toFloat(req.Volatility) / 1000,
		toFloat(req.Collateral),
		toFloat(req.Borrowed),
		toFloat(req.Deposits),
		toFloat(req.CreditScore),
	}

	prob := s.probability(features)
	if prob >= 0.5 {
		return Response{
			RiskScore:   1,
			Advice:      fmt.Sprintf("High risk (prob %.2f), consider increasing collateral", prob),
			Probability: prob,
		}
	}
	return Response{RiskScore: 0, Advice: "Safe to borrow", Probability: prob}
}

func (s *LogisticScorer) probability(features [5]float64) float64 {
	z := s.intercept
	for i := range features {
		z += s.weights[i] * (features[i] - s.means[i]) / s.stds[i]
	}
	return 1 / (1 + math.Exp(-z))
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
