package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alonsohii/Suscribe/api/controllers"
	"github.com/alonsohii/Suscribe/internal/subscriptions"
	"github.com/alonsohii/Suscribe/internal/users"
	"github.com/alonsohii/Suscribe/internal/webhooks"
	"github.com/alonsohii/Suscribe/pkg/config"
	"github.com/alonsohii/Suscribe/pkg/enums"
	"github.com/alonsohii/Suscribe/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct{}

func (stubUsers) Register(context.Context, users.RegisterRequest) (*users.RegisterResponse, error) {
	return &users.RegisterResponse{UserID: 1, Message: "User registered successfully"}, nil
}

type stubSubs struct{}

func (stubSubs) Subscribe(context.Context, subscriptions.SubscribeRequest) (*subscriptions.SubscribeResponse, error) {
	return &subscriptions.SubscribeResponse{Status: subscriptions.StatusProcessing}, nil
}

func (stubSubs) Get(context.Context, int64) (*subscriptions.SubscriptionDTO, error) {
	return &subscriptions.SubscriptionDTO{SubscriptionID: 1, UserID: 7, Status: enums.SubscriptionStatusActive}, nil
}

func (stubSubs) GetAll(context.Context) ([]subscriptions.SubscriptionDTO, error) {
	return []subscriptions.SubscriptionDTO{}, nil
}

func (stubSubs) Cancel(context.Context, int64) (*subscriptions.SubscriptionDTO, error) {
	return &subscriptions.SubscriptionDTO{SubscriptionID: 1, UserID: 7, Status: enums.SubscriptionStatusCancelled}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:   &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
		Users:    stubUsers{},
		Subs:     stubSubs{},
		Recorder: webhooks.NewRecorder(false),
		Readies:  map[string]controllers.Pinger{"db": okPinger{}},
		Registry: prometheus.NewRegistry(),
	})
}

func TestRouterWiresContractRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/user/register", `{"name":"Ada","email":"ada@example.com"}`, http.StatusOK},
		{http.MethodPost, "/subscribe", `{"userId":7,"paymentMethod":"paypal"}`, http.StatusAccepted},
		{http.MethodGet, "/subscription/7", "", http.StatusOK},
		{http.MethodPost, "/subscription/7/cancel", "", http.StatusOK},
		{http.MethodGet, "/subscriptions", "", http.StatusOK},
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/webhook-mock/received", "", http.StatusOK},
		{http.MethodGet, "/webhook-mock/error-status", "", http.StatusOK},
		{http.MethodDelete, "/webhook-mock/clear", "", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewReader([]byte(tc.body)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterReadyDegradedWithoutBroker(t *testing.T) {
	router := NewRouter(Deps{
		Config:   &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
		Users:    stubUsers{},
		Subs:     stubSubs{},
		Recorder: webhooks.NewRecorder(false),
		Readies:  map[string]controllers.Pinger{"db": okPinger{}, "rabbitmq": nil},
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}
