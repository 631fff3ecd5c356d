package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/config"
	"github.com/defi-pool/defi_pool/internal/logging"
	"github.com/defi-pool/defi_pool/internal/risk"
)

func newTestServerApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppName:     "DefiPool",
		AppEnv:      "test",
		RiskTimeout: 2 * time.Second,
	}
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func request(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func TestVersionAndPing(t *testing.T) {
	app := newTestServerApp(t)

	status, body := request(t, app, http.MethodGet, "/version", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["version"] != Version {
		t.Fatalf("unexpected version: %v", body["version"])
	}

	status, body = request(t, app, http.MethodGet, "/api/v1/ping", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected ping body: %v", body)
	}
}

func TestLendingLifecycleOverHTTP(t *testing.T) {
	scorer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(risk.Response{RiskScore: 0, Advice: "Safe to borrow", Probability: 0.1})
	}))
	defer scorer.Close()

	app := newTestServerApp(t)

	status, _ := request(t, app, http.MethodPost, "/api/v1/admin/tokens",
		fiber.Map{"token": "USDC", "address": "ryjl3-tyaaa-aaaaa-aaaba-cai"})
	if status != http.StatusCreated {
		t.Fatalf("token registration: expected 201, got %d", status)
	}

	status, _ = request(t, app, http.MethodPost, "/api/v1/admin/risk-service",
		fiber.Map{"url": scorer.URL})
	if status != http.StatusOK {
		t.Fatalf("risk-service registration: expected 200, got %d", status)
	}

	status, _ = request(t, app, http.MethodPost, "/api/v1/signup",
		fiber.Map{"user": "alice", "username": "Alice"})
	if status != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", status)
	}

	status, body := request(t, app, http.MethodPost, "/api/v1/collateral/deposits",
		fiber.Map{"user": "alice", "token": "USDC", "amount": 150})
	if status != http.StatusOK {
		t.Fatalf("collateral deposit: expected 200, got %d", status)
	}
	if body["verdict"] != "safe" {
		t.Fatalf("expected safe verdict, got %v", body["verdict"])
	}

	status, body = request(t, app, http.MethodPost, "/api/v1/borrows",
		fiber.Map{"user": "alice", "token": "USDC", "amount": 100})
	if status != http.StatusOK {
		t.Fatalf("borrow: expected 200, got %d", status)
	}
	if body["advice"] != "Safe to borrow" {
		t.Fatalf("unexpected advice: %v", body["advice"])
	}

	status, _ = request(t, app, http.MethodPost, "/api/v1/borrows",
		fiber.Map{"user": "alice", "token": "USDC", "amount": 1})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("over-borrow: expected 422, got %d", status)
	}

	status, body = request(t, app, http.MethodGet, "/api/v1/users/alice", nil)
	if status != http.StatusOK {
		t.Fatalf("account read: expected 200, got %d", status)
	}
	borrowed, _ := body["borrowed"].(map[string]any)
	if borrowed["USDC"] != "100" {
		t.Fatalf("expected borrowed 100, got %v", borrowed["USDC"])
	}

	status, body = request(t, app, http.MethodGet, "/api/v1/mint-log/alice", nil)
	if status != http.StatusOK {
		t.Fatalf("mint log: expected 200, got %d", status)
	}
	entries, _ := body["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected 1 mint-log entry, got %d", len(entries))
	}

	status, body = request(t, app, http.MethodGet, "/api/v1/tokens", nil)
	if status != http.StatusOK {
		t.Fatalf("tokens report: expected 200, got %d", status)
	}
	addresses, _ := body["addresses"].(map[string]any)
	if addresses["USDC"] != "ryjl3-tyaaa-aaaaa-aaaba-cai" {
		t.Fatalf("unexpected token address: %v", addresses["USDC"])
	}
}

func TestCrowdfundOverHTTP(t *testing.T) {
	app := newTestServerApp(t)

	request(t, app, http.MethodPost, "/api/v1/admin/tokens",
		fiber.Map{"token": "USDC", "address": "0xusdc"})

	status, body := request(t, app, http.MethodPost, "/api/v1/crowdfund/contributions",
		fiber.Map{"user": "alice", "token": "USDC", "amount": 250})
	if status != http.StatusOK {
		t.Fatalf("contribution: expected 200, got %d", status)
	}
	if body["token_total"] != "250" {
		t.Fatalf("expected token total 250, got %v", body["token_total"])
	}

	status, body = request(t, app, http.MethodGet, "/api/v1/crowdfund", nil)
	if status != http.StatusOK {
		t.Fatalf("crowdfund snapshot: expected 200, got %d", status)
	}
	funds, _ := body["funds"].(map[string]any)
	if funds["USDC"] != "250" {
		t.Fatalf("expected fund total 250, got %v", funds["USDC"])
	}

	status, _ = request(t, app, http.MethodPost, "/api/v1/crowdfund/contributions",
		fiber.Map{"user": "alice", "token": "GHOST", "amount": 10})
	if status != http.StatusNotFound {
		t.Fatalf("unknown token contribution: expected 404, got %d", status)
	}
}
