// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Cache (Redis) backing the home render cache
	RedisURL string `env:"REDIS_URL,required"`

	// Identity service (Appwrite-compatible)
	AppwriteEndpoint  string `env:"APPWRITE_ENDPOINT,required"`
	AppwriteProjectID string `env:"APPWRITE_PROJECT_ID,required"`
	AppwriteAPIKey    string `env:"APPWRITE_API_KEY,required"`

	// Document database and collections on the identity service
	DatabaseID       string `env:"APPWRITE_DATABASE_ID,required"`
	UserCollectionID string `env:"APPWRITE_USER_COLLECTION_ID,required"`
	BankCollectionID string `env:"APPWRITE_BANK_COLLECTION_ID,required"`

	// Bank-data aggregation service (Plaid-compatible)
	PlaidBaseURL  string `env:"PLAID_BASE_URL" envDefault:"https://sandbox.plaid.com"`
	PlaidClientID string `env:"PLAID_CLIENT_ID,required"`
	PlaidSecret   string `env:"PLAID_SECRET,required"`

	// Payments network (Dwolla-compatible)
	DwollaBaseURL string `env:"DWOLLA_BASE_URL" envDefault:"https://api-sandbox.dwolla.com"`
	DwollaKey     string `env:"DWOLLA_KEY,required"`
	DwollaSecret  string `env:"DWOLLA_SECRET,required"`

	// Session cookie
	CookieName   string `env:"SESSION_COOKIE_NAME" envDefault:"athens-session"`
	CookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"true"`

	// Hex-encoded 32-byte key for the shareable-id codec
	ShareCodeKey string `env:"SHARE_CODE_KEY,required"`

	// Home render cache TTL
	HomeCacheTTL time.Duration `env:"HOME_CACHE_TTL" envDefault:"5m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ShareCodeKeyBytes decodes the configured share-code key.
// The codec requires exactly 32 bytes.
func (c *Config) ShareCodeKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.ShareCodeKey)
	if err != nil {
		return nil, fmt.Errorf("SHARE_CODE_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("SHARE_CODE_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := cfg.ShareCodeKeyBytes(); err != nil {
		return nil, err
	}
	return cfg, nil
}
