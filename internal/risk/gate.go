package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"net/http"
	"sync"
	"time"
)

const (
	// unavailableAdvice is recorded on the account when the scorer cannot
	// be reached or returns garbage.
	unavailableAdvice = "AI service unavailable"

	minVolatility = 0.01
	maxVolatility = 0.5

	scorePath = "/risk"
)

// Gate calls the external risk scorer and interprets its verdict. The
// endpoint may be set (and overwritten) at runtime; while unset, every
// evaluation returns Unavailable without performing a call.
type Gate struct {
	mu       sync.RWMutex
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewGate builds a gate targeting the given scorer base URL, which may be
// empty. The timeout bounds each scoring call so a hung scorer cannot stall
// a ledger operation forever.
func NewGate(endpoint string, timeout time.Duration, logger *slog.Logger) *Gate {
	return &Gate{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// SetEndpoint points the gate at a scorer base URL, overwriting any
// previous value.
func (g *Gate) SetEndpoint(url string) {
	g.mu.Lock()
	g.endpoint = url
	g.mu.Unlock()
}

// Endpoint reports the configured scorer base URL.
func (g *Gate) Endpoint() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.endpoint
}

// Evaluate scores the aggregated USD position. It returns Unavailable with
// empty advice when no endpoint is configured, and Unavailable with the
// service-unavailable advice when the call fails.
func (g *Gate) Evaluate(ctx context.Context, collateralUSD, borrowedUSD, depositsUSD, creditScore *big.Int) Verdict {
	endpoint := g.Endpoint()
	if endpoint == "" {
		return Verdict{Outcome: Unavailable}
	}

	req := Request{
		Volatility:  scaledVolatility(borrowedUSD, depositsUSD),
		Collateral:  collateralUSD,
		Borrowed:    borrowedUSD,
		Deposits:    depositsUSD,
		CreditScore: creditScore,
	}

	resp, err := g.call(ctx, endpoint, req)
	if err != nil {
		g.logger.Warn("risk scorer call failed", "endpoint", endpoint, "error", err)
		return Verdict{Outcome: Unavailable, Advice: unavailableAdvice}
	}

	outcome := Safe
	if resp.RiskScore > 0 {
		outcome = HighRisk
	}
	return Verdict{Outcome: outcome, Probability: resp.Probability, Advice: resp.Advice}
}

func (g *Gate) call(ctx context.Context, endpoint string, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode risk request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+scorePath, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("build risk request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call risk scorer: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("risk scorer returned status %d", httpResp.StatusCode)
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("decode risk response: %w", err)
	}
	return resp, nil
}

// scaledVolatility derives the borrowed/deposits ratio, floors it at
// minVolatility when there are no deposits, clamps it to the accepted band,
// and scales it to the integer domain the scorer expects.
func scaledVolatility(borrowedUSD, depositsUSD *big.Int) *big.Int {
	deposits, _ := new(big.Float).SetInt(depositsUSD).Float64()
	borrowed, _ := new(big.Float).SetInt(borrowedUSD).Float64()

	volatility := minVolatility
	if deposits > 0 {
		volatility = borrowed / deposits
	}
	if volatility < minVolatility {
		volatility = minVolatility
	}
	if volatility > maxVolatility {
		volatility = maxVolatility
	}
	return big.NewInt(int64(math.Round(volatility * 1000)))
}
