// Package cli provides common CLI initialization utilities shared by the
// commands under cmd/.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"spendingtracker/internal/backend"
	"spendingtracker/internal/config"
	applog "spendingtracker/internal/log"
	"spendingtracker/internal/storage"
)

// SetupLogger initializes structured logging at the given level name and
// installs it as the default logger. Unknown levels fall back to info.
func SetupLogger(level string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.NewText(os.Stdout, lvl, applog.ComponentApp)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level, "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// ValidateConfig exits the process when cfg is invalid.
func ValidateConfig(logger *applog.Logger, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
}

// InitStore opens the configured backend or exits the process; nothing
// works without a store.
func InitStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) storage.Store {
	opts, err := backend.OptionsFrom(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	store, err := backend.Open(ctx, logger.WithComponent(applog.ComponentBackend).Logger, opts)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err, "backend", opts.Kind)
		os.Exit(1)
	}
	return store
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
