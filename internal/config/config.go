// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DemoKey is the placeholder credential that switches a provider into demo mode.
const DemoKey = "demo_key"

// DefaultEncryptionSecret is the development-only credential encryption secret.
const DefaultEncryptionSecret = "demo_fernet_key_32_bytes_long_for_dev"

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string
	Host string

	// E*TRADE API settings
	ConsumerKey    string
	ConsumerSecret string
	ETradeEnv      string // "sandbox" or "live"
	BrokerCallback string
	DashboardURL   string

	// Security
	EncryptionSecret string // Used for encrypting stored broker credentials

	// Key-value store DSN (memory://, sqlite://path, redis://host:port)
	StoreURL string

	// Cross-origin policy
	CORSOrigin string

	// TrustProxy derives client addresses from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxy bool

	// News provider settings
	NewsAPIKey string
	NewsAPIURL string

	// Environment
	Environment string
}

// Load reads the optional .env file and builds a Config from the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8000"),
		Host:             getEnv("HOST", "0.0.0.0"),
		ConsumerKey:      getEnv("ETRADE_CONSUMER_KEY", DemoKey),
		ConsumerSecret:   getEnv("ETRADE_CONSUMER_SECRET", "demo_secret"),
		ETradeEnv:        strings.ToLower(getEnv("ETRADE_ENV", "sandbox")),
		BrokerCallback:   getEnv("BROKER_CALLBACK", "http://localhost:3000/api/brokers/etrade/callback"),
		DashboardURL:     getEnv("DASHBOARD_URL", "http://localhost:3000/dashboard"),
		EncryptionSecret: getEnv("FERNET_KEY", getEnv("ENCRYPTION_SECRET", DefaultEncryptionSecret)),
		StoreURL:         getEnv("STORE_URL", getEnv("REDIS_URL", "memory://")),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:3000"),
		NewsAPIKey:       getEnv("NEWS_API_KEY", DemoKey),
		NewsAPIURL:       getEnv("NEWS_API_URL", "https://newsapi.org/v2/top-headlines"),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}

	trustProxy, err := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("TRUST_PROXY must be a boolean: %w", err)
	}
	cfg.TrustProxy = trustProxy

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted safely.
func (c *Config) Validate() error {
	if c.ETradeEnv != "sandbox" && c.ETradeEnv != "live" {
		return fmt.Errorf("ETRADE_ENV must be \"sandbox\" or \"live\", got %q", c.ETradeEnv)
	}
	if len(c.EncryptionSecret) < 32 {
		return fmt.Errorf("FERNET_KEY must be at least 32 characters")
	}
	return nil
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// BrokerDemoMode reports whether the broker gateway runs without E*TRADE.
func (c *Config) BrokerDemoMode() bool {
	return c.ConsumerKey == DemoKey
}

// NewsDemoMode reports whether the news gateway runs without NewsAPI.
func (c *Config) NewsDemoMode() bool {
	return c.NewsAPIKey == DemoKey
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
