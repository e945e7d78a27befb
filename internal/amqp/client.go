// Package amqp carries records-changed events between the API and the
// refresh worker.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewClient dials the broker and declares the exchange/queue pair.
// Brokers are routinely slower to boot than this service, so the dial is
// retried with jittered backoff before giving up.
func NewClient(ctx context.Context, url, exchangeName, queueName string) (*Client, error) {
	var conn *amqp091.Connection
	err := retry.Do(
		func() error {
			var dialErr error
			conn, dialErr = amqp091.Dial(url)
			return dialErr
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("AMQP dial failed, retrying", "attempt", n+1, "error", err)
		}),
	)
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
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishRecordsChanged publishes a change event for one scope and date.
func (c *Client) PublishRecordsChanged(ctx context.Context, scope, date string) error {
	msg := NewRecordsChangedMessage(scope, date)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish records changed: %w", err)
	}

	slog.InfoContext(ctx, "Records-changed event published", "scope", scope, "date", date)
	return nil
}

// Consume delivers records-changed messages to handler until ctx is done.
// A handler error leaves the message unacked for redelivery; malformed
// payloads are rejected without requeue.
func (c *Client) Consume(ctx context.Context, handler func(context.Context, *RecordsChangedMessage) error) error {
	deliveries, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			msg, err := RecordsChangedMessageFromJSON(d.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Dropping malformed records-changed message", "error", err)
				_ = d.Reject(false)
				continue
			}
			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Records-changed handler failed",
					"scope", msg.Scope, "date", msg.Date, "error", err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
