package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/risk"
	"github.com/defi-pool/defi_pool/internal/token"
)

type riskServiceRequest struct {
	URL string `json:"url"`
}

type registerTokenRequest struct {
	Token   string `json:"token"`
	Address string `json:"address"`
}

// RegisterAdminRoutes wires the administrative endpoints: pointing the risk
// gate at a scorer and registering supported tokens. Both are
// idempotent-by-overwrite.
func RegisterAdminRoutes(r fiber.Router, gate *risk.Gate, tokens *token.Registry) {
	admin := r.Group("/admin")

	admin.Post("/risk-service", func(c *fiber.Ctx) error {
		var req riskServiceRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.URL == "" {
			return fiber.NewError(http.StatusBadRequest, "url is required")
		}
		gate.SetEndpoint(req.URL)
		return c.Status(http.StatusOK).JSON(fiber.Map{"risk_service": req.URL})
	})

	admin.Post("/tokens", func(c *fiber.Ctx) error {
		var req registerTokenRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.Token == "" || req.Address == "" {
			return fiber.NewError(http.StatusBadRequest, "token and address are required")
		}
		tokens.Register(req.Token, req.Address)
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"token":   req.Token,
			"address": req.Address,
		})
	})
}
