package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tracker/internal/cli"
	"tracker/internal/export"
	apphttp "tracker/internal/http"
	"tracker/internal/services"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	amqpClient := cli.InitAMQP(logger, cfg)

	accounts := services.NewAccountService(repo)
	categories := services.NewCategoryService(repo)
	expenses := services.NewExpenseService(repo, amqpClient)
	defer expenses.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := categories.EnsureDefaults(ctx); err != nil {
		logger.Error("Failed to seed default categories", "error", err)
		os.Exit(1)
	}

	var sheets *export.SheetsExporter
	if cfg.SheetsSpreadsheetID != "" {
		var err error
		sheets, err = export.NewSheetsExporter(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsSheetName, cfg.SheetsCredentialsJSON)
		if err != nil {
			logger.Error("Failed to initialize Sheets export, continuing without it", "error", err)
		} else {
			logger.Info("Sheets export enabled", "spreadsheet_id", cfg.SheetsSpreadsheetID)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, accounts, categories, expenses, sheets)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tracker server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
