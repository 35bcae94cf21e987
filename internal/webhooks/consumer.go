package webhooks

import (
	"context"
	"time"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/pkg/config"
	pkgerrors "github.com/alonsohii/Suscribe/pkg/errors"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/sethvargo/go-retry"
)

const dedupeScope = "webhook"

// Deduper marks idempotency keys as delivered. A nil Deduper disables the
// check and every message is delivered.
type Deduper interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Consumer delivers webhook notifications with a bounded fixed-delay retry.
// Exhausting the attempts surfaces an error so the message dead-letters.
type Consumer struct {
	notifier Notifier
	deduper  Deduper
	attempts int
	delay    time.Duration
	ttl      time.Duration
	logg     *logger.Logger
}

// NewConsumer wires delivery dependencies. deduper may be nil.
func NewConsumer(notifier Notifier, deduper Deduper, cfg config.WebhookConfig, logg *logger.Logger) (*Consumer, error) {
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "webhook notifier required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	// retry.NewConstant panics on non-positive intervals.
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	return &Consumer{
		notifier: notifier,
		deduper:  deduper,
		attempts: attempts,
		delay:    delay,
		ttl:      cfg.DedupeTTL,
		logg:     logg,
	}, nil
}

// Handle delivers one notification. Duplicate idempotency keys are dropped.
// On exhausted retries the dedupe marker is released so a redelivered copy
// gets a fresh chance, and the error routes the message to the error queue.
func (c *Consumer) Handle(ctx context.Context, msg messaging.WebhookNotificationMessage) error {
	ctx = c.logg.WithField(ctx, "idempotency_key", msg.IdempotencyKey.String())

	var marker string
	if c.deduper != nil {
		marker = c.deduper.IdempotencyKey(dedupeScope, msg.IdempotencyKey.String())
		fresh, err := c.deduper.SetNX(ctx, marker, 1, c.ttl)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claiming dedupe marker")
		}
		if !fresh {
			c.logg.Info(ctx, "duplicate webhook notification dropped")
			return nil
		}
	}

	backoff := retry.WithMaxRetries(uint64(c.attempts-1), retry.NewConstant(c.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.notifier.Notify(ctx, msg); err != nil {
			c.logg.Warn(ctx, "webhook delivery attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if marker != "" {
			if delErr := c.deduper.Del(ctx, marker); delErr != nil {
				c.logg.Error(ctx, "releasing dedupe marker failed", delErr)
			}
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delivering webhook notification")
	}

	c.logg.Info(ctx, "webhook notification delivered")
	return nil
}
