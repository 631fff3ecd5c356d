package risk

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/defi-pool/defi_pool/internal/logging"
)

func newTestGate(endpoint string) *Gate {
	return NewGate(endpoint, 2*time.Second, logging.Discard())
}

func scorerStub(t *testing.T, resp Response) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != scorePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestEvaluateWithoutEndpointIsUnavailable(t *testing.T) {
	gate := newTestGate("")
	verdict := gate.Evaluate(context.Background(), big.NewInt(100), big.NewInt(0), big.NewInt(0), big.NewInt(700))

	if verdict.Outcome != Unavailable {
		t.Fatalf("expected Unavailable, got %v", verdict.Outcome)
	}
	if verdict.Advice != "" {
		t.Fatalf("expected no advice when unconfigured, got %q", verdict.Advice)
	}
}

func TestEvaluateSafeVerdict(t *testing.T) {
	srv := scorerStub(t, Response{RiskScore: 0, Advice: "Safe to borrow", Probability: 0.12})
	defer srv.Close()

	gate := newTestGate(srv.URL)
	verdict := gate.Evaluate(context.Background(), big.NewInt(150), big.NewInt(100), big.NewInt(200), big.NewInt(700))

	if verdict.Outcome != Safe {
		t.Fatalf("expected Safe, got %v", verdict.Outcome)
	}
	if verdict.Advice != "Safe to borrow" {
		t.Fatalf("unexpected advice %q", verdict.Advice)
	}
	if verdict.Probability != 0.12 {
		t.Fatalf("unexpected probability %v", verdict.Probability)
	}
}

func TestEvaluateHighRiskVerdict(t *testing.T) {
	srv := scorerStub(t, Response{RiskScore: 1, Advice: "High risk (prob 0.91), consider increasing collateral", Probability: 0.91})
	defer srv.Close()

	gate := newTestGate(srv.URL)
	verdict := gate.Evaluate(context.Background(), big.NewInt(10), big.NewInt(100), big.NewInt(0), big.NewInt(300))

	if verdict.Outcome != HighRisk {
		t.Fatalf("expected HighRisk, got %v", verdict.Outcome)
	}
}

func TestEvaluateTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	gate := newTestGate(endpoint)
	verdict := gate.Evaluate(context.Background(), big.NewInt(100), big.NewInt(0), big.NewInt(0), big.NewInt(700))

	if verdict.Outcome != Unavailable {
		t.Fatalf("expected Unavailable, got %v", verdict.Outcome)
	}
	if verdict.Advice != unavailableAdvice {
		t.Fatalf("expected %q, got %q", unavailableAdvice, verdict.Advice)
	}
}

func TestEvaluateMalformedResponseIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	gate := newTestGate(srv.URL)
	verdict := gate.Evaluate(context.Background(), big.NewInt(100), big.NewInt(0), big.NewInt(0), big.NewInt(700))

	if verdict.Outcome != Unavailable {
		t.Fatalf("expected Unavailable, got %v", verdict.Outcome)
	}
	if verdict.Advice != unavailableAdvice {
		t.Fatalf("expected %q, got %q", unavailableAdvice, verdict.Advice)
	}
}

func TestSetEndpointOverwrites(t *testing.T) {
	gate := newTestGate("http://old")
	gate.SetEndpoint("http://new")
	if gate.Endpoint() != "http://new" {
		t.Fatalf("endpoint not overwritten: %s", gate.Endpoint())
	}
}

func TestScaledVolatility(t *testing.T) {
	cases := []struct {
		borrowed int64
		deposits int64
		want     int64
	}{
		{0, 0, 10}, // floor when there are no deposits
		{300, 1_000, 300},
		{900, 1_000, 500}, // clamped to the ceiling
		{1, 1_000, 10},    // clamped to the floor
	}
	for _, tc := range cases {
		got := scaledVolatility(big.NewInt(tc.borrowed), big.NewInt(tc.deposits))
		if got.Cmp(big.NewInt(tc.want)) != 0 {
			t.Fatalf("volatility(%d/%d): expected %d, got %s", tc.borrowed, tc.deposits, tc.want, got)
		}
	}
}
