package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://app:secret@db:5432/suscribe"}
	require.NoError(t, cfg.ensureDSN())
	assert.Equal(t, "postgres://app:secret@db:5432/suscribe", cfg.DSN)
}

func TestEnsureDSNAssemblesFromLegacyVars(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "db",
		LegacyPort:     5432,
		LegacyUser:     "app",
		LegacyPassword: "secret",
		LegacyName:     "suscribe",
		LegacySSLMode:  "disable",
	}
	require.NoError(t, cfg.ensureDSN())
	assert.Equal(t, "postgres://app:secret@db:5432/suscribe?sslmode=disable", cfg.DSN)
}

func TestEnsureDSNReportsMissingVars(t *testing.T) {
	cfg := DBConfig{LegacyHost: "db"}
	err := cfg.ensureDSN()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUSCRIBE_DB_USER")
	assert.Contains(t, err.Error(), "SUSCRIBE_DB_NAME")
}

func TestEnsureURLKeepsExplicitValue(t *testing.T) {
	cfg := RabbitMQConfig{URL: "amqp://guest:guest@mq:5672/"}
	require.NoError(t, cfg.ensureURL())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.URL)
}

func TestEnsureURLRejectsWrongScheme(t *testing.T) {
	cfg := RabbitMQConfig{URL: "http://mq:5672/"}
	require.Error(t, cfg.ensureURL())
}

func TestEnsureURLAssemblesFromLegacyVars(t *testing.T) {
	cfg := RabbitMQConfig{
		LegacyHost:     "mq",
		LegacyPort:     5672,
		LegacyUser:     "guest",
		LegacyPassword: "guest",
		LegacyVHost:    "/",
	}
	require.NoError(t, cfg.ensureURL())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.URL)
}

func TestEnsureURLRequiresHost(t *testing.T) {
	cfg := RabbitMQConfig{}
	require.Error(t, cfg.ensureURL())
}

func TestRedisEnabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{URL: "redis://cache:6379"}.Enabled())
	assert.True(t, RedisConfig{Address: "cache:6379"}.Enabled())
}

func TestAppEnvHelpers(t *testing.T) {
	assert.True(t, AppConfig{Env: "dev"}.IsDev())
	assert.True(t, AppConfig{Env: "DEV"}.IsDev())
	assert.True(t, AppConfig{Env: "prod"}.IsProd())
	assert.False(t, AppConfig{Env: "prod"}.IsDev())
}

func TestWebhookDefaultsShape(t *testing.T) {
	// Defaults come from envconfig tags; this pins the zero-value semantics
	// the consumer guards against.
	cfg := WebhookConfig{Attempts: 3, RetryDelay: 5 * time.Second}
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
}
