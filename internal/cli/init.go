// Package cli consolidates the initialization shared by cmd/tracker and
// cmd/alert-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tracker/internal/amqp"
	"tracker/internal/config"
	"tracker/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Missing files are
// fine; production configures through real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration or exits on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository or exits on failure.
func InitSQLite(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite storage", "error", err, "path", dbPath)
		os.Exit(1)
	}
	logger.Info("SQLite storage initialized", "path", dbPath)
	return repo
}

// InitAMQP connects the event client when an AMQP URL is configured. Returns
// nil when the event stream is disabled; a configured-but-unreachable broker
// is only logged, the tracker keeps working without events.
func InitAMQP(logger *slog.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP not configured, event publishing disabled")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP, continuing without events", "error", err)
		return nil
	}
	logger.Info("AMQP event client connected",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
