package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/defi-pool/defi_pool/internal/account"
	"github.com/defi-pool/defi_pool/internal/config"
	"github.com/defi-pool/defi_pool/internal/crowdfund"
	"github.com/defi-pool/defi_pool/internal/engine"
	"github.com/defi-pool/defi_pool/internal/middleware"
	"github.com/defi-pool/defi_pool/internal/mintlog"
	"github.com/defi-pool/defi_pool/internal/oracle"
	"github.com/defi-pool/defi_pool/internal/risk"
	"github.com/defi-pool/defi_pool/internal/token"
)

// Version identifies the pool ledger service.
const Version = "defi_pool v1.0.0"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares, constructs the ledger services, and wires
// all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"version": Version})
	})

	// Services and handlers
	accounts := account.NewStore()
	tokens := token.NewRegistry(nil)
	prices := oracle.NewStatic()
	gate := risk.NewGate(d.Cfg.RiskServiceURL, d.Cfg.RiskTimeout, d.Logger)
	mints := mintlog.NewLog()

	poolEngine := engine.New(accounts, tokens, prices, gate, mints, d.Logger)
	crowdfundSvc := crowdfund.NewService(tokens, mints, d.Logger)

	engineHandler := engine.NewHandler(poolEngine)
	crowdfundHandler := crowdfund.NewHandler(crowdfundSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterPoolRoutes(api, engineHandler)
	RegisterCrowdfundRoutes(api, crowdfundHandler)
	RegisterAdminRoutes(api, gate, tokens)
	RegisterReportRoutes(api, mints, tokens)

	return nil
}
