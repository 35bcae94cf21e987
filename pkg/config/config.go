package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig on top of the explicit variable names below.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Webhook  WebhookConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.RabbitMQ.ensureURL(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SUSCRIBE_APP_ENV" required:"true"`
	Port         string `envconfig:"SUSCRIBE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SUSCRIBE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUSCRIBE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SUSCRIBE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SUSCRIBE_DB_DSN"`

	LegacyHost     string `envconfig:"SUSCRIBE_DB_HOST"`
	LegacyPort     int    `envconfig:"SUSCRIBE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUSCRIBE_DB_USER"`
	LegacyPassword string `envconfig:"SUSCRIBE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUSCRIBE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUSCRIBE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUSCRIBE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUSCRIBE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUSCRIBE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUSCRIBE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUSCRIBE_REDIS_URL"`
	Address      string        `envconfig:"SUSCRIBE_REDIS_ADDR"`
	Password     string        `envconfig:"SUSCRIBE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUSCRIBE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUSCRIBE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUSCRIBE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUSCRIBE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUSCRIBE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUSCRIBE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint has been configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type RabbitMQConfig struct {
	URL string `envconfig:"SUSCRIBE_AMQP_URL"`

	LegacyHost     string `envconfig:"SUSCRIBE_AMQP_HOST"`
	LegacyPort     int    `envconfig:"SUSCRIBE_AMQP_PORT" default:"5672"`
	LegacyUser     string `envconfig:"SUSCRIBE_AMQP_USER" default:"guest"`
	LegacyPassword string `envconfig:"SUSCRIBE_AMQP_PASSWORD" default:"guest"`
	LegacyVHost    string `envconfig:"SUSCRIBE_AMQP_VHOST" default:"/"`

	SubscriptionQueue string `envconfig:"SUSCRIBE_AMQP_SUBSCRIPTION_QUEUE" default:"subscription-queue"`
	WebhookQueue      string `envconfig:"SUSCRIBE_AMQP_WEBHOOK_QUEUE" default:"webhook-notification-queue"`

	ConnectAttempts int           `envconfig:"SUSCRIBE_AMQP_CONNECT_ATTEMPTS" default:"5"`
	ConnectDelay    time.Duration `envconfig:"SUSCRIBE_AMQP_CONNECT_DELAY" default:"3s"`
}

type WebhookConfig struct {
	URL string `envconfig:"SUSCRIBE_WEBHOOK_URL"`

	Attempts   int           `envconfig:"SUSCRIBE_WEBHOOK_ATTEMPTS" default:"3"`
	RetryDelay time.Duration `envconfig:"SUSCRIBE_WEBHOOK_RETRY_DELAY" default:"5s"`
	Timeout    time.Duration `envconfig:"SUSCRIBE_WEBHOOK_TIMEOUT" default:"10s"`
	DedupeTTL  time.Duration `envconfig:"SUSCRIBE_WEBHOOK_DEDUPE_TTL" default:"24h"`

	SimulateError bool `envconfig:"SUSCRIBE_WEBHOOK_SIMULATE_ERROR" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"SUSCRIBE_DB_HOST": db.LegacyHost,
		"SUSCRIBE_DB_USER": db.LegacyUser,
		"SUSCRIBE_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"SUSCRIBE_DB_HOST", "SUSCRIBE_DB_USER", "SUSCRIBE_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either SUSCRIBE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

func (mq *RabbitMQConfig) ensureURL() error {
	if mq.URL != "" {
		if !strings.HasPrefix(mq.URL, "amqp://") && !strings.HasPrefix(mq.URL, "amqps://") {
			return fmt.Errorf("SUSCRIBE_AMQP_URL must use the amqp:// or amqps:// scheme")
		}
		return nil
	}

	if mq.LegacyHost == "" {
		return fmt.Errorf("either SUSCRIBE_AMQP_URL or SUSCRIBE_AMQP_HOST is required")
	}

	u := &url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(mq.LegacyUser, mq.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", mq.LegacyHost, mq.LegacyPort),
		Path:   mq.LegacyVHost,
	}

	mq.URL = u.String()
	return nil
}
