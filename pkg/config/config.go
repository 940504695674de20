package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "prostore"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	PayPal        PayPalConfig
	Stripe        StripeConfig
	Notifications NotificationsConfig
	Migrate       MigrateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"PROSTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PROSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PROSTORE_DB_DSN"`
	Driver string `envconfig:"PROSTORE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PROSTORE_DB_HOST"`
	Port     int    `envconfig:"PROSTORE_DB_PORT" default:"5432"`
	User     string `envconfig:"PROSTORE_DB_USER"`
	Password string `envconfig:"PROSTORE_DB_PASSWORD"`
	Name     string `envconfig:"PROSTORE_DB_NAME"`
	SSLMode  string `envconfig:"PROSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if strings.TrimSpace(d.DSN) != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either PROSTORE_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"PROSTORE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"PROSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROSTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROSTORE_JWT_ISSUER" default:"prostore"`
	ExpirationMinutes int    `envconfig:"PROSTORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PayPalConfig struct {
	APIURL    string        `envconfig:"PROSTORE_PAYPAL_API_URL" default:"https://api-m.sandbox.paypal.com"`
	ClientID  string        `envconfig:"PROSTORE_PAYPAL_CLIENT_ID"`
	AppSecret string        `envconfig:"PROSTORE_PAYPAL_APP_SECRET"`
	Timeout   time.Duration `envconfig:"PROSTORE_PAYPAL_TIMEOUT" default:"15s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"PROSTORE_STRIPE_API_KEY"`
	Secret string `envconfig:"PROSTORE_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"PROSTORE_STRIPE_ENV" default:"test"`

	WebhookIdempotencyTTL time.Duration `envconfig:"PROSTORE_STRIPE_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

func (s StripeConfig) Environment() string {
	return s.Env
}

type NotificationsConfig struct {
	SenderEmail string `envconfig:"PROSTORE_NOTIFY_SENDER_EMAIL" default:"orders@prostore.example"`
	SenderName  string `envconfig:"PROSTORE_NOTIFY_SENDER_NAME" default:"Prostore Orders"`
}

type MigrateConfig struct {
	Dir       string `envconfig:"PROSTORE_MIGRATE_DIR" default:"db/migrations"`
	AutoApply bool   `envconfig:"PROSTORE_MIGRATE_AUTO_APPLY" default:"false"`
}
