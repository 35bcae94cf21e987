package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alonsohii/Suscribe/api/controllers"
	"github.com/alonsohii/Suscribe/api/routes"
	"github.com/alonsohii/Suscribe/internal/messaging"
	"github.com/alonsohii/Suscribe/internal/payments"
	"github.com/alonsohii/Suscribe/internal/subscriptions"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/internal/webhooks"
	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/db"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/alonsohii/Suscribe/pkg/metrics"
	"github.com/alonsohii/Suscribe/pkg/migrate"
	"github.com/alonsohii/Suscribe/pkg/rabbitmq"
	"github.com/alonsohii/Suscribe/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	messagingMetrics := metrics.NewMessagingMetrics(registry)

	// A broker outage does not take the API down. Publishes answer 503 until
	// the process restarts with a reachable broker.
	mqClient, err := rabbitmq.Connect(ctx, cfg.RabbitMQ, logg, messagingMetrics)
	if err != nil {
		logg.Error(ctx, "message channel unavailable, continuing degraded", err)
		mqClient = nil
	} else {
		defer func() {
			if err := mqClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing message channel", err)
			}
		}()
	}

	usersRepo := users.NewRepository(dbClient.DB())
	subsRepo := subscriptions.NewRepository(dbClient.DB())

	usersService, err := users.NewService(usersRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}

	subsService, err := subscriptions.NewService(subsRepo, usersRepo, mqClient, cfg.RabbitMQ.SubscriptionQueue, logg)
	if err != nil {
		logg.Error(ctx, "failed to create subscriptions service", err)
		os.Exit(1)
	}

	recorder := webhooks.NewRecorder(cfg.Webhook.SimulateError)

	if mqClient != nil {
		activationConsumer, err := subscriptions.NewConsumer(
			dbClient,
			subsRepo,
			usersRepo,
			payments.NewFakeGateway(),
			mqClient,
			cfg.RabbitMQ.WebhookQueue,
			logg,
		)
		if err != nil {
			logg.Error(ctx, "failed to create activation consumer", err)
			os.Exit(1)
		}

		notifier, err := webhooks.NewHTTPNotifier(cfg.Webhook)
		if err != nil {
			logg.Error(ctx, "failed to create webhook notifier", err)
			os.Exit(1)
		}

		var deduper webhooks.Deduper
		if redisClient != nil {
			deduper = redisClient
		}
		webhookConsumer, err := webhooks.NewConsumer(notifier, deduper, cfg.Webhook, logg)
		if err != nil {
			logg.Error(ctx, "failed to create webhook consumer", err)
			os.Exit(1)
		}

		manager, err := rabbitmq.NewManager(mqClient, logg, messagingMetrics)
		if err != nil {
			logg.Error(ctx, "failed to create channel manager", err)
			os.Exit(1)
		}
		messaging.Bind(manager, cfg.RabbitMQ, activationConsumer, webhookConsumer, logg)

		go func() {
			if err := manager.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "channel manager stopped unexpectedly", err)
			}
		}()
	}

	readies := map[string]controllers.Pinger{
		"database": dbClient,
		"rabbitmq": pingerOrNil(mqClient),
	}
	if redisClient != nil {
		readies["redis"] = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Users:    usersService,
			Subs:     subsService,
			Recorder: recorder,
			Readies:  readies,
			Registry: registry,
		}),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(logCtx, "api server shut down gracefully")
}

// pingerOrNil keeps a typed-nil broker client from masquerading as a healthy
// dependency behind the interface.
func pingerOrNil(client *rabbitmq.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
