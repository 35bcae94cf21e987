package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/alonsohii/Suscribe/pkg/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes the raw body of one delivery. A nil return acknowledges
// the message; any error negatively acknowledges it without requeueing, which
// routes it to the queue's dead-letter holding queue.
type Handler func(ctx context.Context, body []byte) error

// Registrar is the registration surface consumers bind against.
type Registrar interface {
	Handle(queue string, handler Handler)
}

type registration struct {
	queue   string
	handler Handler
}

// Manager dispatches inbound deliveries to the handler registered for the
// queue they arrived on. One consumer loop per queue, one message at a time.
type Manager struct {
	client        *Client
	logg          *logger.Logger
	metrics       *metrics.MessagingMetrics
	registrations []registration
}

// NewManager builds a dispatch manager over an established client.
func NewManager(client *Client, logg *logger.Logger, m *metrics.MessagingMetrics) (*Manager, error) {
	if client == nil {
		return nil, errors.New("channel client required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Manager{client: client, logg: logg, metrics: m}, nil
}

// Handle registers the handler for deliveries arriving on the named queue.
func (m *Manager) Handle(queue string, handler Handler) {
	m.registrations = append(m.registrations, registration{queue: queue, handler: handler})
}

// Run consumes every registered queue until the context is canceled. An
// in-flight message interrupted by shutdown is neither acked nor nacked; the
// broker redelivers it on reconnect.
func (m *Manager) Run(ctx context.Context) error {
	if len(m.registrations) == 0 {
		return errors.New("no queue handlers registered")
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(m.registrations))

	for _, reg := range m.registrations {
		deliveries, err := m.client.channel.Consume(reg.queue, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consuming queue %q: %w", reg.queue, err)
		}

		wg.Add(1)
		go func(reg registration, deliveries <-chan amqp.Delivery) {
			defer wg.Done()
			errCh <- m.consumeLoop(ctx, reg, deliveries)
		}(reg, deliveries)
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}

	wg.Wait()
	return runErr
}

func (m *Manager) consumeLoop(ctx context.Context, reg registration, deliveries <-chan amqp.Delivery) error {
	logCtx := m.logg.WithQueue(ctx, reg.queue)
	m.logg.Info(logCtx, "consumer registered")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %q closed", reg.queue)
			}
			m.dispatch(logCtx, reg, delivery)
		}
	}
}

func (m *Manager) dispatch(ctx context.Context, reg registration, delivery amqp.Delivery) {
	if err := reg.handler(ctx, delivery.Body); err != nil {
		m.logg.Error(ctx, "message handling failed, dead-lettering", err)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			m.logg.Error(ctx, "nack failed", nackErr)
		}
		m.metrics.IncConsumed(reg.queue, metrics.OutcomeNack)
		return
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		m.logg.Error(ctx, "ack failed", ackErr)
	}
	m.metrics.IncConsumed(reg.queue, metrics.OutcomeAck)
}
