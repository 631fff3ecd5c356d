package crowdfund

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/token"
)

// Handler exposes the crowdfunding endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a crowdfund HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type contributeRequest struct {
	User   string   `json:"user"`
	Token  string   `json:"token"`
	Amount *big.Int `json:"amount"`
}

// Contribute records a contribution and mints the reward.
func (h *Handler) Contribute(c *fiber.Ctx) error {
	var req contributeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.User == "" || req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "user and token are required")
	}

	result, err := h.service.Contribute(c.UserContext(), req.User, req.Token, req.Amount)
	switch {
	case err == nil:
	case errors.Is(err, ErrAmountNotPositive):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, token.ErrUnknownToken):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, token.ErrMintFailed):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user":        result.User,
		"token":       result.Token,
		"amount":      result.Amount.String(),
		"token_total": result.TokenTotal.String(),
		"minted":      result.Minted,
	})
}

// Snapshot returns the pool totals and contributor breakdown.
func (h *Handler) Snapshot(c *fiber.Ctx) error {
	funds, contributors := h.service.Snapshot()

	fundsOut := make(map[string]string, len(funds))
	for symbol, total := range funds {
		fundsOut[symbol] = total.String()
	}
	contributorsOut := make(map[string]map[string]string, len(contributors))
	for user, byToken := range contributors {
		entry := make(map[string]string, len(byToken))
		for symbol, amount := range byToken {
			entry[symbol] = amount.String()
		}
		contributorsOut[user] = entry
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"funds":        fundsOut,
		"contributors": contributorsOut,
	})
}
