// riskd serves the fixed logistic-regression risk scorer the pool ledger's
// risk gate consults.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/defi-pool/defi_pool/internal/config"
	"github.com/defi-pool/defi_pool/internal/logging"
	"github.com/defi-pool/defi_pool/internal/risk"
)

const version = "riskd v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New("riskd", cfg.LogLevel)

	app := fiber.New(fiber.Config{
		AppName:      "riskd",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())

	handler := risk.NewHandler(risk.NewLogisticScorer())
	handler.Register(app, version)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- app.Listen(cfg.Address())
	}()
	logger.Info("risk scorer listening", "address", cfg.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
