package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/engine"
)

// RegisterPoolRoutes wires the ledger transition and account read endpoints.
func RegisterPoolRoutes(r fiber.Router, h *engine.Handler) {
	r.Post("/signup", h.Signup)
	r.Post("/deposits", h.Deposit)
	r.Post("/borrows", h.Borrow)
	r.Post("/repayments", h.Repay)
	r.Post("/collateral/deposits", h.DepositCollateral)
	r.Post("/collateral/withdrawals", h.WithdrawCollateral)

	r.Get("/users", h.Users)
	r.Get("/users/:user", h.Account)
	r.Get("/users/:user/username", h.Username)
	r.Get("/users/:user/balances", h.Balances)
	r.Get("/tokens/:token/supply", h.Supply)
}
