package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	// Set up environment variables
	envVars := map[string]string{
		"ALPHAVANTAGE_API_KEY":  "test_alphavantage_key",
		"COINGECKO_API_KEY":     "test_coingecko_key",
		"ALPHAVANTAGE_BASE_URL": "https://test.alphavantage.co",
		"COINGECKO_BASE_URL":    "https://test.coingecko.com",
		"SQLITE_PATH":           "/tmp/test.db",
	}

	for key, value := range envVars {
		os.Setenv(key, value)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"AlphaVantageAPIKey", cfg.AlphaVantageAPIKey, "test_alphavantage_key"},
		{"CoinGeckoAPIKey", cfg.CoinGeckoAPIKey, "test_coingecko_key"},
		{"AlphaVantageBaseURL", cfg.AlphaVantageBaseURL, "https://test.alphavantage.co"},
		{"CoinGeckoBaseURL", cfg.CoinGeckoBaseURL, "https://test.coingecko.com"},
		{"SQLitePath", cfg.SQLitePath, "/tmp/test.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("ALPHAVANTAGE_API_KEY", "test_key")
	defer os.Unsetenv("ALPHAVANTAGE_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.AlphaVantageBaseURL != "https://www.alphavantage.co/query" {
		t.Errorf("AlphaVantageBaseURL = %q, want production default", cfg.AlphaVantageBaseURL)
	}
	if cfg.CoinGeckoBaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("CoinGeckoBaseURL = %q, want production default", cfg.CoinGeckoBaseURL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %s, want 5m", cfg.CacheTTL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %s, want 10s", cfg.RequestTimeout)
	}
	if cfg.EquityConcurrency != 4 {
		t.Errorf("EquityConcurrency = %d, want 4", cfg.EquityConcurrency)
	}
	if cfg.RefreshCron != "@every 5m" {
		t.Errorf("RefreshCron = %q, want @every 5m", cfg.RefreshCron)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("ALPHAVANTAGE_API_KEY")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing API key, got nil")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	envVars := map[string]string{
		"ALPHAVANTAGE_API_KEY": "test_key",
		"CACHE_TTL":            "90s",
		"REQUEST_TIMEOUT":      "3s",
		"EQUITY_CONCURRENCY":   "8",
	}
	for key, value := range envVars {
		os.Setenv(key, value)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %s, want 90s", cfg.CacheTTL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %s, want 3s", cfg.RequestTimeout)
	}
	if cfg.EquityConcurrency != 8 {
		t.Errorf("EquityConcurrency = %d, want 8", cfg.EquityConcurrency)
	}
}
