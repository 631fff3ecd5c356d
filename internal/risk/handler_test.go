package risk

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestScorerEndpoint(t *testing.T) {
	app := fiber.New()
	NewHandler(NewLogisticScorer()).Register(app, "riskd test")

	payload, _ := json.Marshal(Request{
		Volatility:  big.NewInt(10),
		Collateral:  big.NewInt(1_500_000),
		Borrowed:    big.NewInt(10_000),
		Deposits:    big.NewInt(2_000_000),
		CreditScore: big.NewInt(850),
	})
	req := httptest.NewRequest(fiber.MethodPost, scorePath, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var decoded Response
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.RiskScore != 0 {
		t.Fatalf("expected safe score, got %d", decoded.RiskScore)
	}
	if decoded.Advice != "Safe to borrow" {
		t.Fatalf("unexpected advice: %q", decoded.Advice)
	}
}

func TestScorerEndpointRejectsMalformedBody(t *testing.T) {
	app := fiber.New()
	NewHandler(NewLogisticScorer()).Register(app, "riskd test")

	req := httptest.NewRequest(fiber.MethodPost, scorePath, bytes.NewReader([]byte("not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestVersionEndpoint(t *testing.T) {
	app := fiber.New()
	NewHandler(NewLogisticScorer()).Register(app, "riskd test")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/version", nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var decoded map[string]string
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded["version"] != "riskd test" {
		t.Fatalf("unexpected version: %q", decoded["version"])
	}
}
