package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/google/uuid"
)

// Payload is the body posted to the webhook endpoint.
type Payload struct {
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	IdempotencyKey uuid.UUID `json:"idempotencyKey"`
}

// Notifier delivers one notification to the downstream webhook.
type Notifier interface {
	Notify(ctx context.Context, msg messaging.WebhookNotificationMessage) error
}

// HTTPNotifier posts notifications as JSON to a fixed URL. Any non-2xx
// response counts as a failed delivery.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

// NewHTTPNotifier builds a notifier for the configured endpoint.
func NewHTTPNotifier(cfg config.WebhookConfig) (*HTTPNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &HTTPNotifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Notify posts the notification once. Retries belong to the caller.
func (n *HTTPNotifier) Notify(ctx context.Context, msg messaging.WebhookNotificationMessage) error {
	payload := Payload{
		Message:        msg.Message,
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: msg.IdempotencyKey,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook endpoint answered %d", resp.StatusCode)
	}
	return nil
}
