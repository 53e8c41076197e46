package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendingtracker/internal/cli"
	"spendingtracker/internal/config"
	apphttp "spendingtracker/internal/http"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cli.ValidateConfig(logger, cfg)
	if err := run(logger, cfg); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	store := cli.InitStore(ctx, logger, cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewCardService(store),
		services.NewTransactionService(store),
		apphttp.Options{
			MaxPhotoBytes:    cfg.MaxPhotoBytes,
			PhotoJPEGQuality: cfg.PhotoJPEGQuality,
			CacheTTL:         cfg.CacheTTL,
			Logger:           logger,
		})

	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendingtracker server",
			"port", cfg.Port, "backend", cfg.DataBackend, applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
