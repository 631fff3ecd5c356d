package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/defi-pool/defi_pool/internal/mintlog"
	"github.com/defi-pool/defi_pool/internal/token"
)

type mintEntryResponse struct {
	ID       string `json:"id"`
	User     string `json:"user"`
	Token    string `json:"token"`
	Amount   string `json:"amount"`
	MintedAt string `json:"minted_at"`
}

// RegisterReportRoutes wires the thin read-only reporting endpoints: the
// mint log and the supported token registry.
func RegisterReportRoutes(r fiber.Router, mints *mintlog.Log, tokens *token.Registry) {
	r.Get("/mint-log", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"entries": mintEntries(mints.All())})
	})

	r.Get("/mint-log/:user", func(c *fiber.Ctx) error {
		user := c.Params("user")
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"user":    user,
			"entries": mintEntries(mints.ByUser(user)),
		})
	})

	r.Get("/tokens", func(c *fiber.Ctx) error {
		symbols := tokens.Symbols()
		addresses := make(map[string]string, len(symbols))
		for _, symbol := range symbols {
			if address, ok := tokens.Address(symbol); ok {
				addresses[symbol] = address
			}
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"tokens":    symbols,
			"addresses": addresses,
		})
	})
}

func mintEntries(entries []mintlog.Entry) []mintEntryResponse {
	out := make([]mintEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = mintEntryResponse{
			ID:       entry.ID,
			User:     entry.User,
			Token:    entry.Token,
			Amount:   entry.Amount.String(),
			MintedAt: entry.MintedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}
