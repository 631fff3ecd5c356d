package risk

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the scorer over HTTP for the standalone risk service.
type Handler struct {
	scorer Scorer
}

// NewHandler builds a scorer HTTP handler.
func NewHandler(scorer Scorer) *Handler {
	return &Handler{scorer: scorer}
}

// Score evaluates a position and returns the verdict payload.
func (h *Handler) Score(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(h.scorer.Score(req))
}

// Register wires the scorer routes onto the app.
func (h *Handler) Register(app *fiber.App, version string) {
	app.Post(scorePath, h.Score)
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"version": version})
	})
}
