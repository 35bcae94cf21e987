package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/alonsohii/Suscribe/pkg/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

// ErrorQueueSuffix names the dead-letter holding queue for each work queue.
const ErrorQueueSuffix = "_error"

// ErrNotConnected is returned when publishing while the broker is unreachable
// (degraded mode).
var ErrNotConnected = errors.New("message channel not connected")

// Client owns the process-wide AMQP connection and queue topology.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     config.RabbitMQConfig
	logg    *logger.Logger
	metrics *metrics.MessagingMetrics

	// amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connect dials the broker with a bounded fixed-delay retry policy and
// declares the queue topology. Consumers process one message at a time.
func Connect(ctx context.Context, cfg config.RabbitMQConfig, logg *logger.Logger, m *metrics.MessagingMetrics) (*Client, error) {
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	// retry.NewConstant panics on non-positive intervals.
	delay := cfg.ConnectDelay
	if delay <= 0 {
		delay = time.Millisecond
	}

	var conn *amqp.Connection
	var channel *amqp.Channel

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := amqp.Dial(cfg.URL)
		if err != nil {
			if logg != nil {
				logg.Warn(ctx, "message channel dial failed, retrying")
			}
			return retry.RetryableError(err)
		}
		ch, err := c.Channel()
		if err != nil {
			_ = c.Close()
			return retry.RetryableError(err)
		}
		conn = c
		channel = ch
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to message channel: %w", err)
	}

	if err := channel.Qos(1, 0, false); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("setting channel qos: %w", err)
	}

	client := &Client{
		conn:    conn,
		channel: channel,
		cfg:     cfg,
		logg:    logg,
		metrics: m,
	}

	if err := client.declareTopology(); err != nil {
		_ = client.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "message channel connected")
	}

	return client, nil
}

// declareTopology declares every work queue plus its dead-letter holding
// queue. Declaration is idempotent on the broker side.
func (c *Client) declareTopology() error {
	for _, queue := range []string{c.cfg.SubscriptionQueue, c.cfg.WebhookQueue} {
		errQueue := queue + ErrorQueueSuffix

		if _, err := c.channel.QueueDeclare(errQueue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declaring queue %q: %w", errQueue, err)
		}
		if _, err := c.channel.QueueDeclare(queue, true, false, false, false, deadLetterArgs(errQueue)); err != nil {
			return fmt.Errorf("declaring queue %q: %w", queue, err)
		}
	}
	return nil
}

func deadLetterArgs(errQueue string) amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": errQueue,
	}
}

// Publish serializes body as JSON and publishes it to the named queue via the
// default exchange. Returns ErrNotConnected in degraded mode.
func (c *Client) Publish(ctx context.Context, queue string, body any) error {
	if c == nil || c.channel == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding message for %q: %w", queue, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publishing to %q: %w", queue, err)
	}

	c.metrics.IncPublished(queue)
	return nil
}

// Ping verifies the connection is still open.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return ErrNotConnected
	}
	if c.conn.IsClosed() {
		return errors.New("message channel connection closed")
	}
	return nil
}

// Close shuts down the channel and connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.channel != nil {
		err = multierr.Append(err, c.channel.Close())
	}
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}
