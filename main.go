package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"assettracker/internal/aggregator"
	"assettracker/internal/alphavantage"
	"assettracker/internal/assetstore"
	"assettracker/internal/coingecko"
	"assettracker/internal/config"
	"assettracker/internal/fallback"
	"assettracker/internal/pricecache"
	"assettracker/internal/ratelimit"
	"assettracker/internal/scheduler"
	"assettracker/internal/sqlitedb"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	// Open the durable store shared by the price cache and the asset store
	db, err := sqlitedb.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	cache, err := pricecache.NewStore(db, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to initialize price cache: %v", err)
	}

	assets, err := assetstore.New(db)
	if err != nil {
		log.Fatalf("Failed to initialize asset store: %v", err)
	}

	// Providers share one rate limiter, one API each
	limiter := ratelimit.New()
	crypto := coingecko.New(cfg.CoinGeckoAPIKey, cfg.CoinGeckoBaseURL, limiter)
	equity := alphavantage.New(cfg.AlphaVantageAPIKey, cfg.AlphaVantageBaseURL, limiter)

	agg := aggregator.New(cache, crypto, equity, fallback.New(),
		aggregator.WithTimeout(cfg.RequestTimeout),
		aggregator.WithEquityConcurrency(cfg.EquityConcurrency),
		aggregator.WithLogger(logger),
	)

	sched := scheduler.New(assets, agg, cache, logger)
	if err := sched.Register(cfg.RefreshCron, cfg.SweepCron); err != nil {
		log.Fatalf("Failed to register scheduled tasks: %v", err)
	}

	// Warm the cache once on startup, then hand over to cron
	sched.RefreshNow()
	sched.Start()
	defer sched.Stop()

	logger.Info("asset tracker running",
		"cache_ttl", cfg.CacheTTL,
		"refresh", cfg.RefreshCron,
		"sweep", cfg.SweepCron)

	<-ctx.Done()
}
