package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alonsohii/Suscribe/api/controllers"
	"github.com/alonsohii/Suscribe/api/middleware"
	"github.com/alonsohii/Suscribe/internal/subscriptions"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/internal/webhooks"
	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Users    users.Service
	Subs     subscriptions.Service
	Recorder *webhooks.Recorder
	Readies  map[string]controllers.Pinger
	Registry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Get("/health/live", controllers.HealthLive(deps.Config))
	r.Get("/health/ready", controllers.HealthReady(deps.Config, deps.Readies))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Post("/user/register", controllers.RegisterUser(deps.Users, deps.Logger))

	r.Post("/subscribe", controllers.Subscribe(deps.Subs, deps.Logger))
	r.Get("/subscriptions", controllers.ListSubscriptions(deps.Subs, deps.Logger))
	r.Route("/subscription/{userId}", func(r chi.Router) {
		r.Get("/", controllers.GetSubscription(deps.Subs, deps.Logger))
		r.Post("/cancel", controllers.CancelSubscription(deps.Subs, deps.Logger))
	})

	r.Route("/webhook-mock", func(r chi.Router) {
		r.Post("/receive", controllers.WebhookMockReceive(deps.Recorder, deps.Logger))
		r.Get("/received", controllers.WebhookMockReceived(deps.Recorder, deps.Logger))
		r.Get("/error-status", controllers.WebhookMockErrorStatus(deps.Recorder, deps.Logger))
		r.Post("/error-status", controllers.WebhookMockSetErrorStatus(deps.Recorder, deps.Logger))
		r.Delete("/clear", controllers.WebhookMockClear(deps.Recorder, deps.Logger))
	})

	return r
}
