package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tentacles/internal/adapters/exchanges"
	"tentacles/pkg/errors"
)

type Config struct {
	App           AppConfig
	Bybit         BybitConfig
	HTTP          HTTPConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
	Community     CommunityConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"tentacles"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type BybitConfig struct {
	APIKey    string `envconfig:"BYBIT_API_KEY"`
	SecretKey string `envconfig:"BYBIT_SECRET_KEY"`
	Testnet   bool   `envconfig:"BYBIT_TESTNET" default:"false"`
	// Market is one of spot, linear_perp, inverse_perp
	Market  string `envconfig:"BYBIT_MARKET" default:"spot"`
	BaseURL string `envconfig:"BYBIT_BASE_URL"`

	// RecvWindow overrides the adapter default when set
	RecvWindow       time.Duration `envconfig:"BYBIT_RECV_WINDOW"`
	HTTPTimeout      time.Duration `envconfig:"BYBIT_HTTP_TIMEOUT" default:"10s"`
	GlobalRateLimit  int           `envconfig:"BYBIT_GLOBAL_RATE_LIMIT" default:"600"`  // requests per minute
	TradingRateLimit int           `envconfig:"BYBIT_TRADING_RATE_LIMIT" default:"100"` // order requests per minute
	MaxRetries       int           `envconfig:"BYBIT_MAX_RETRIES" default:"3"`

	// Symbols loaded at startup to register their future contracts
	Symbols []string `envconfig:"BYBIT_SYMBOLS"`
}

// MarketType validates the configured market.
func (c BybitConfig) MarketType() (exchanges.MarketType, error) {
	switch m := exchanges.MarketType(c.Market); m {
	case exchanges.MarketTypeSpot, exchanges.MarketTypeLinearPerp, exchanges.MarketTypeInversePerp:
		return m, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidInput, "unknown bybit market %q", c.Market)
}

type HTTPConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

// KafkaConfig enables order update publishing when brokers are set.
type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	OrderTopic string   `envconfig:"KAFKA_ORDER_TOPIC" default:"exchange.orders"`

	// QueueSize bounds order updates waiting for the broker; extra updates are dropped
	QueueSize      int           `envconfig:"KAFKA_QUEUE_SIZE" default:"1024"`
	PublishTimeout time.Duration `envconfig:"KAFKA_PUBLISH_TIMEOUT" default:"5s"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type CommunityConfig struct {
	// LoginWait bounds how long the page waits for a pending login
	LoginWait time.Duration `envconfig:"COMMUNITY_LOGIN_WAIT" default:"5s"`
	// PreviewWhenUnavailable renders the page in preview mode when authentication is down
	PreviewWhenUnavailable bool `envconfig:"COMMUNITY_PREVIEW_WHEN_UNAVAILABLE" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if _, err := cfg.Bybit.MarketType(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
