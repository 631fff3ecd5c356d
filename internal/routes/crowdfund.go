package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/crowdfund"
)

// RegisterCrowdfundRoutes wires the crowdfunding endpoints.
func RegisterCrowdfundRoutes(r fiber.Router, h *crowdfund.Handler) {
	r.Post("/crowdfund/contributions", h.Contribute)
	r.Get("/crowdfund", h.Snapshot)
}
