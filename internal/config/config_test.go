package config

import (
	"os"
	"testing"
)

// allConfigKeys lists every env var that Load reads.
var allConfigKeys = []string{
	"PORT", "HOST",
	"ETRADE_CONSUMER_KEY", "ETRADE_CONSUMER_SECRET", "ETRADE_ENV",
	"BROKER_CALLBACK", "DASHBOARD_URL",
	"FERNET_KEY", "ENCRYPTION_SECRET",
	"STORE_URL", "REDIS_URL",
	"CORS_ORIGIN", "NEWS_API_KEY", "NEWS_API_URL", "ENVIRONMENT",
	"TRUST_PROXY",
}

// isolateEnv unsets all config variables for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.BrokerDemoMode() {
		t.Error("default config should be in broker demo mode")
	}
	if !cfg.NewsDemoMode() {
		t.Error("default config should be in news demo mode")
	}
	if cfg.ETradeEnv != "sandbox" {
		t.Errorf("ETradeEnv = %q, want sandbox", cfg.ETradeEnv)
	}
	if cfg.StoreURL != "memory://" {
		t.Errorf("StoreURL = %q, want memory://", cfg.StoreURL)
	}
	if cfg.CORSOrigin != "http://localhost:3000" {
		t.Errorf("CORSOrigin = %q", cfg.CORSOrigin)
	}
	if cfg.Address() != "0.0.0.0:8000" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.TrustProxy {
		t.Error("forwarding headers should not be trusted by default")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ETRADE_CONSUMER_KEY", "ck")
	t.Setenv("ETRADE_CONSUMER_SECRET", "cs")
	t.Setenv("ETRADE_ENV", "LIVE")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("FERNET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("NEWS_API_KEY", "news")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BrokerDemoMode() || cfg.NewsDemoMode() {
		t.Error("real keys should disable demo mode")
	}
	if cfg.ETradeEnv != "live" {
		t.Errorf("ETradeEnv = %q, want live", cfg.ETradeEnv)
	}
	if cfg.StoreURL != "redis://localhost:6379" {
		t.Errorf("StoreURL = %q", cfg.StoreURL)
	}
}

func TestLoad_StoreURLOverridesRedisURL(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("STORE_URL", "sqlite://data/kv.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreURL != "sqlite://data/kv.db" {
		t.Errorf("StoreURL = %q", cfg.StoreURL)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("NEWS_API_KEY=from-dotenv\nPORT=9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets real process variables; drop them afterwards.
	t.Cleanup(func() {
		os.Unsetenv("NEWS_API_KEY")
		os.Unsetenv("PORT")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.NewsAPIKey != "from-dotenv" {
		t.Errorf("NewsAPIKey = %q, want from-dotenv", cfg.NewsAPIKey)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ETRADE_ENV", "staging")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown ETRADE_ENV")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("FERNET_KEY", "short")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a short FERNET_KEY")
	}
}

func TestLoad_TrustProxy(t *testing.T) {
	isolateEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.TrustProxy {
		t.Error("TRUST_PROXY=true should enable TrustProxy")
	}

	t.Setenv("TRUST_PROXY", "sometimes")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject a non-boolean TRUST_PROXY")
	}
}
