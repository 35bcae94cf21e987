package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/internal/payments"
	"github.com/alonsohii/Suscribe/internal/subscriptions"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/internal/webhooks"
	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/db"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/alonsohii/Suscribe/pkg/metrics"
	"github.com/alonsohii/Suscribe/pkg/rabbitmq"
	"github.com/alonsohii/Suscribe/pkg/redis"
)

type ServiceParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	RabbitMQ *rabbitmq.Client
	Metrics  *metrics.MessagingMetrics
}

type Service struct {
	cfg     *config.Config
	logg    *logger.Logger
	db      *db.Client
	redis   *redis.Client
	mq      *rabbitmq.Client
	manager *rabbitmq.Manager
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.RabbitMQ == nil {
		return nil, errors.New("message channel client is required")
	}

	usersRepo := users.NewRepository(params.DB.DB())
	subsRepo := subscriptions.NewRepository(params.DB.DB())

	activationConsumer, err := subscriptions.NewConsumer(
		params.DB,
		subsRepo,
		usersRepo,
		payments.NewFakeGateway(),
		params.RabbitMQ,
		params.Config.RabbitMQ.WebhookQueue,
		params.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("creating activation consumer: %w", err)
	}

	notifier, err := webhooks.NewHTTPNotifier(params.Config.Webhook)
	if err != nil {
		return nil, fmt.Errorf("creating webhook notifier: %w", err)
	}

	var deduper webhooks.Deduper
	if params.Redis != nil {
		deduper = params.Redis
	}
	webhookConsumer, err := webhooks.NewConsumer(notifier, deduper, params.Config.Webhook, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating webhook consumer: %w", err)
	}

	manager, err := rabbitmq.NewManager(params.RabbitMQ, params.Logger, params.Metrics)
	if err != nil {
		return nil, fmt.Errorf("creating channel manager: %w", err)
	}
	messaging.Bind(manager, params.Config.RabbitMQ, activationConsumer, webhookConsumer, params.Logger)

	return &Service{
		cfg:     params.Config,
		logg:    params.Logger,
		db:      params.DB,
		redis:   params.Redis,
		mq:      params.RabbitMQ,
		manager: manager,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "rabbitmq", s.mq.Ping); err != nil {
		return err
	}
	if s.redis != nil {
		if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
			return err
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.manager.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		s.logg.Info(ctx, "worker context canceled")
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logg.Error(ctx, "channel manager stopped unexpectedly", err)
		}
		return err
	}
}
