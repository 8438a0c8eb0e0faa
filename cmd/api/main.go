// @title pet-companion API
// @version 1.0
// @description Mascota virtual (Rabanito) y listas compartidas: películas, cupones y productos.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pet-companion/internal/app"
	"pet-companion/internal/platform/config"
	"pet-companion/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: logger.ParseFormat(cfg.Logging.Format),
		App:    cfg.Logging.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", map[string]any{"err": err})
		}
	}()

	log.Info("pet-companion starting", map[string]any{
		"addr":     cfg.Addr(),
		"storage":  storageMode(cfg),
		"textgen":  cfg.TextGen.Provider,
		"pet_name": cfg.Pet.Name,
	})

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("pet-companion stopped", nil)
	return nil
}

func storageMode(cfg *config.Config) string {
	if cfg.Database.DSN == "" {
		return "memory"
	}
	return "postgres"
}
