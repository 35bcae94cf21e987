package messaging

import (
	"context"
	"encoding/json"

	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/alonsohii/Suscribe/pkg/rabbitmq"
)

// SubscriptionHandler consumes decoded subscription-creation messages.
type SubscriptionHandler interface {
	Handle(ctx context.Context, msg SubscriptionCreatedMessage) error
}

// WebhookHandler consumes decoded webhook notification messages.
type WebhookHandler interface {
	Handle(ctx context.Context, msg WebhookNotificationMessage) error
}

// Bind registers the closed set of message shapes against their queues. Each
// handler receives only the shape its queue carries; bodies that fail to
// decode are dropped (acked) since redelivery cannot fix them.
func Bind(reg rabbitmq.Registrar, cfg config.RabbitMQConfig, subs SubscriptionHandler, hooks WebhookHandler, logg *logger.Logger) {
	reg.Handle(cfg.SubscriptionQueue, func(ctx context.Context, body []byte) error {
		var msg SubscriptionCreatedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logg.Error(ctx, "undecodable subscription message dropped", err)
			return nil
		}
		return subs.Handle(ctx, msg)
	})

	reg.Handle(cfg.WebhookQueue, func(ctx context.Context, body []byte) error {
		var msg WebhookNotificationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logg.Error(ctx, "undecodable webhook message dropped", err)
			return nil
		}
		return hooks.Handle(ctx, msg)
	})
}
