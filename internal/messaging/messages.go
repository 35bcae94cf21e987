package messaging

import "github.com/google/uuid"

// SubscriptionCreatedMessage asks the activation consumer to create and pay a
// subscription. Queue-carried only, never persisted.
type SubscriptionCreatedMessage struct {
	UserID        int64  `json:"userId"`
	PaymentMethod string `json:"paymentMethod"`
}

// WebhookNotificationMessage carries a completed-activation notice to the
// webhook consumer. The idempotency key is generated once at publish time.
type WebhookNotificationMessage struct {
	IdempotencyKey uuid.UUID `json:"idempotencyKey"`
	UserID         int64     `json:"userId"`
	Message        string    `json:"message"`
}
