package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hotelrates/internal/infra/config"
	"hotelrates/internal/infra/obs"
	"hotelrates/internal/infra/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(os.Getenv("APP_ENV")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if cfg.SeedFile != "" {
		if err := loadSeed(ctx, app, cfg.SeedFile, logger); err != nil {
			logger.Error("seed failed", "error", err, "path", cfg.SeedFile)
			os.Exit(1)
		}
	}

	var wg sync.WaitGroup
	runBackground(ctx, &wg, logger, "catalog", app.catalog.Run)
	if app.worker != nil {
		runBackground(ctx, &wg, logger, "outbox worker", app.worker.Run)
	}

	server := app.server(cfg, logger)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.Store, "changefeed", cfg.ChangeFeed)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
		wg.Wait()
		os.Exit(1)
	}
	wg.Wait()
	logger.Info("HTTP server stopped")
}

func runBackground(ctx context.Context, wg *sync.WaitGroup, logger *slog.Logger, name string, run func(context.Context) error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := run(ctx); err != nil {
			logger.Error(name+" stopped", "error", err)
		}
	}()
}

func loadSeed(ctx context.Context, app *application, path string, logger *slog.Logger) error {
	f, err := seed.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("seed file not found, skipping", "path", path)
			return nil
		}
		return err
	}
	_, err = seed.Seeder{Commands: app.buses.Commands, Queries: app.buses.Queries, Logger: logger}.Apply(ctx, f)
	return err
}
