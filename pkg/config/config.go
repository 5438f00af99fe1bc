package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Cart        CartConfig
	Checkout    CheckoutConfig
	WooCommerce WooCommerceConfig
	PayPal      PayPalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.WooCommerce.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TUBEBOOST_APP_ENV" default:"dev"`
	Port         string `envconfig:"TUBEBOOST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TUBEBOOST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TUBEBOOST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"TUBEBOOST_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"TUBEBOOST_DB_DSN" default:"tubeboost.db"`

	MaxOpenConns    int           `envconfig:"TUBEBOOST_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"TUBEBOOST_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"TUBEBOOST_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TUBEBOOST_REDIS_URL"`
	Address      string        `envconfig:"TUBEBOOST_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"TUBEBOOST_REDIS_PASSWORD"`
	DB           int           `envconfig:"TUBEBOOST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TUBEBOOST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TUBEBOOST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TUBEBOOST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TUBEBOOST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TUBEBOOST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"TUBEBOOST_CART_SNAPSHOT_TTL" default:"720h"`
	ReceiptTTL  time.Duration `envconfig:"TUBEBOOST_CART_RECEIPT_TTL" default:"168h"`
}

type CheckoutConfig struct {
	Currency           string        `envconfig:"TUBEBOOST_CHECKOUT_CURRENCY" default:"USD"`
	CaptureTimeout     time.Duration `envconfig:"TUBEBOOST_CHECKOUT_CAPTURE_TIMEOUT" default:"30s"`
	IntentTimeout      time.Duration `envconfig:"TUBEBOOST_CHECKOUT_INTENT_TIMEOUT" default:"20s"`
	CaptureGuardTTL    time.Duration `envconfig:"TUBEBOOST_CHECKOUT_CAPTURE_GUARD_TTL" default:"24h"`
	PaymentRateWindow  time.Duration `envconfig:"TUBEBOOST_CHECKOUT_PAYMENT_RATE_WINDOW" default:"1m"`
	PaymentRateLimit   int           `envconfig:"TUBEBOOST_CHECKOUT_PAYMENT_RATE_LIMIT" default:"10"`
	BankTransferMethod string        `envconfig:"TUBEBOOST_CHECKOUT_BANK_TRANSFER_METHOD" default:"bacs"`
}

type WooCommerceConfig struct {
	BaseURL        string `envconfig:"TUBEBOOST_WOOCOMMERCE_BASE_URL"`
	ConsumerKey    string `envconfig:"TUBEBOOST_WOOCOMMERCE_CONSUMER_KEY"`
	ConsumerSecret string `envconfig:"TUBEBOOST_WOOCOMMERCE_CONSUMER_SECRET"`
	APIVersion     string `envconfig:"TUBEBOOST_WOOCOMMERCE_API_VERSION" default:"wc/v3"`
}

func (w WooCommerceConfig) validate() error {
	if strings.TrimSpace(w.BaseURL) == "" {
		return fmt.Errorf("%s is required", EnvWooBaseURL)
	}
	if strings.TrimSpace(w.ConsumerKey) == "" || strings.TrimSpace(w.ConsumerSecret) == "" {
		return fmt.Errorf("%s and %s are required", EnvWooConsumerKey, EnvWooConsumerSecret)
	}
	return nil
}

type PayPalConfig struct {
	ClientID string `envconfig:"TUBEBOOST_PAYPAL_CLIENT_ID"`
	Secret   string `envconfig:"TUBEBOOST_PAYPAL_SECRET"`
	Env      string `envconfig:"TUBEBOOST_PAYPAL_ENV" default:"sandbox"`
}

// Environment returns the normalized PayPal environment (sandbox/live).
func (p PayPalConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}
