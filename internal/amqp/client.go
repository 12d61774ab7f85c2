// Package amqp publishes ledger change and budget alert events to RabbitMQ.
// The event stream is optional: services hold a nil *Client when no broker is
// configured and skip publishing.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Routing keys within the exchange.
const (
	RouteExpenseChanged = "expense_changed"
	RouteBudgetAlert    = "budget_alert"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{RouteExpenseChanged, RouteBudgetAlert} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue to %s: %w", key, err)
		}
	}

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// PublishExpenseChanged publishes a ledger mutation event.
func (c *Client) PublishExpenseChanged(ctx context.Context, expenseID, userID int64, op string) error {
	msg := NewExpenseChangedMessage(expenseID, userID, op)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, RouteExpenseChanged, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published expense changed event",
		"message_id", msg.MessageID,
		"expense_id", expenseID,
		"user_id", userID,
		"op", op)
	return nil
}

// PublishBudgetAlert publishes a budget-exceeded event.
func (c *Client) PublishBudgetAlert(ctx context.Context, userID int64, year, month int, totalCents, budgetCents int64) error {
	msg := NewBudgetAlertMessage(userID, year, month, totalCents, budgetCents)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, RouteBudgetAlert, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published budget alert event",
		"message_id", msg.MessageID,
		"user_id", userID,
		"year", year,
		"month", month,
		"total_cents", totalCents,
		"budget_cents", budgetCents)
	return nil
}

// Delivery is one consumed event plus its routing key so handlers can
// distinguish change events from alerts.
type Delivery struct {
	RoutingKey string
	Body       []byte
}

// Consume delivers queue messages to the handler until the context is
// cancelled. Messages are acked on handler success and nacked with requeue on
// failure.
func (c *Client) Consume(ctx context.Context, handler func(Delivery) error) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			err := handler(Delivery{RoutingKey: delivery.RoutingKey, Body: delivery.Body})
			if err != nil {
				slog.ErrorContext(ctx, "Event handler failed",
					"routing_key", delivery.RoutingKey, "error", err)
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					slog.ErrorContext(ctx, "Failed to nack message", "error", nackErr)
				}
				continue
			}
			if ackErr := delivery.Ack(false); ackErr != nil {
				slog.ErrorContext(ctx, "Failed to ack message", "error", ackErr)
			}
		}
	}
}

func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = fmt.Errorf("close channel: %w", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close connection: %w", err)
		}
	}
	return firstErr
}
