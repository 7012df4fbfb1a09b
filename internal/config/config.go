package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the asset tracker.
type Config struct {
	// API keys for the upstream price providers
	CoinGeckoAPIKey    string `mapstructure:"coingecko_api_key"`
	AlphaVantageAPIKey string `mapstructure:"alphavantage_api_key"`

	// Base URLs for API endpoints (configurable for testing)
	CoinGeckoBaseURL    string `mapstructure:"coingecko_base_url"`
	AlphaVantageBaseURL string `mapstructure:"alphavantage_base_url"`

	// Price resolution tuning
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	EquityConcurrency int           `mapstructure:"equity_concurrency"`

	// Storage and scheduling
	SQLitePath  string `mapstructure:"sqlite_path"`
	RefreshCron string `mapstructure:"refresh_cron"`
	SweepCron   string `mapstructure:"sweep_cron"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables:
//   - ALPHAVANTAGE_API_KEY (required)
//   - COINGECKO_API_KEY (optional, demo tier works without one)
//   - COINGECKO_BASE_URL, ALPHAVANTAGE_BASE_URL (optional, default to production)
//   - CACHE_TTL, REQUEST_TIMEOUT, EQUITY_CONCURRENCY (optional)
//   - SQLITE_PATH, REFRESH_CRON, SWEEP_CRON (optional)
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("coingecko_base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("alphavantage_base_url", "https://www.alphavantage.co/query")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("equity_concurrency", 4)
	v.SetDefault("sqlite_path", "data/assettracker.db")
	v.SetDefault("refresh_cron", "@every 5m")
	v.SetDefault("sweep_cron", "@every 1h")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.assettracker")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	// Bind environment variables
	v.BindEnv("coingecko_api_key", "COINGECKO_API_KEY")
	v.BindEnv("alphavantage_api_key", "ALPHAVANTAGE_API_KEY")
	v.BindEnv("coingecko_base_url", "COINGECKO_BASE_URL")
	v.BindEnv("alphavantage_base_url", "ALPHAVANTAGE_BASE_URL")
	v.BindEnv("cache_ttl", "CACHE_TTL")
	v.BindEnv("request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("equity_concurrency", "EQUITY_CONCURRENCY")
	v.BindEnv("sqlite_path", "SQLITE_PATH")
	v.BindEnv("refresh_cron", "REFRESH_CRON")
	v.BindEnv("sweep_cron", "SWEEP_CRON")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	var missing []string
	if config.AlphaVantageAPIKey == "" {
		missing = append(missing, "ALPHAVANTAGE_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if config.CacheTTL <= 0 {
		return nil, fmt.Errorf("cache_ttl must be positive, got %s", config.CacheTTL)
	}
	if config.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request_timeout must be positive, got %s", config.RequestTimeout)
	}
	if config.EquityConcurrency <= 0 {
		return nil, fmt.Errorf("equity_concurrency must be positive, got %d", config.EquityConcurrency)
	}

	return config, nil
}
