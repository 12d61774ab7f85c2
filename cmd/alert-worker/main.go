// The alert worker is the consumer side of the tracker's event stream: it
// drains ledger change and budget alert events from the queue and logs them,
// standing in for whatever notification channel a deployment hooks up.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tracker/internal/amqp"
	"tracker/internal/cli"
	"tracker/internal/core"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Alert worker started", "queue", cfg.AMQPQueue)

	err = client.Consume(ctx, func(d amqp.Delivery) error {
		switch d.RoutingKey {
		case amqp.RouteBudgetAlert:
			msg, err := amqp.BudgetAlertMessageFromJSON(d.Body)
			if err != nil {
				return err
			}
			slog.Warn("Budget exceeded",
				"user_id", msg.UserID,
				"year", msg.Year,
				"month", msg.Month,
				"total", core.Money{Cents: msg.TotalCents}.Format(),
				"budget", core.Money{Cents: msg.BudgetCents}.Format())
		case amqp.RouteExpenseChanged:
			msg, err := amqp.ExpenseChangedMessageFromJSON(d.Body)
			if err != nil {
				return err
			}
			slog.Info("Ledger changed",
				"expense_id", msg.ExpenseID,
				"user_id", msg.UserID,
				"op", msg.Op)
		default:
			slog.Warn("Unknown routing key, dropping message", "routing_key", d.RoutingKey)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert worker stopped")
}
