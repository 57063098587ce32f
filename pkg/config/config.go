package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP
	HTTPAddr string

	// Database. DatabaseURL selects PostgreSQL; when empty the application
	// falls back to an embedded SQLite database at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// Redis (optional subscription read cache)
	RedisURL             string
	SubscriptionCacheTTL time.Duration

	// RabbitMQ (optional domain event publisher)
	RabbitMQURL string

	// Billing
	BillingWebhookSecret string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "nestora.db"),

		RedisURL:             getEnv("REDIS_URL", ""),
		SubscriptionCacheTTL: getDurationEnv("SUBSCRIPTION_CACHE_TTL", 30*time.Second),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		BillingWebhookSecret: getEnv("BILLING_WEBHOOK_SECRET", ""),
	}

	if cfg.BillingWebhookSecret == "" && cfg.IsDevelopment() {
		// Keeps local webhook replays working without extra setup.
		// Production deployments must set their own secret.
		cfg.BillingWebhookSecret = "dev-webhook-secret"
		slog.Warn("BILLING_WEBHOOK_SECRET not set, using development default")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
