package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment    string `envconfig:"ENV" default:"development"`
	DBDSN          string `envconfig:"DB_DSN" required:"true"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
	LogFile        string `envconfig:"LOG_FILE"`

	// Telegram бот выключен, если токен пустой
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`

	// HTTP API выключен, если адрес пустой
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
	JWTSecret string `envconfig:"JWT_SECRET"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CachePrefix   string        `envconfig:"CACHE_PREFIX" default:"tutor"`

	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"reservations"`
	NotifyQueue      string `envconfig:"NOTIFY_QUEUE" default:"reservations.telegram"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	QuickLimit int `envconfig:"QUICK_LIMIT" default:"3"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет связанные между собой поля
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.HTTPAddr != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when HTTP_ADDR is set")
	}
	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return fmt.Errorf("nothing to run: set TELEGRAM_TOKEN or HTTP_ADDR")
	}
	if c.QuickLimit < 0 {
		return fmt.Errorf("QUICK_LIMIT must be non-negative, got %d", c.QuickLimit)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}

func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}
