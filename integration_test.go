package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"assettracker/internal/aggregator"
	"assettracker/internal/alphavantage"
	"assettracker/internal/coingecko"
	"assettracker/internal/fallback"
	"assettracker/internal/pricecache"
	"assettracker/internal/pricing"
	"assettracker/internal/ratelimit"
	"assettracker/internal/sqlitedb"
)

// TestIntegration_ResolveFlow exercises the full pipeline with mock HTTP
// servers: classification, batched crypto fetch, per-symbol equity fetch,
// cache write-through and the warmed-cache second call.
func TestIntegration_ResolveFlow(t *testing.T) {
	var equityCalls, cryptoCalls atomic.Int64

	alphavantageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		equityCalls.Add(1)
		symbol := r.URL.Query().Get("symbol")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "` + symbol + `",
				"05. price": "182.50",
				"09. change": "1.25",
				"10. change percent": "0.69%"
			}
		}`))
	}))
	defer alphavantageServer.Close()

	coingeckoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cryptoCalls.Add(1)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"bitcoin": {"usd": 65000.00, "usd_24h_change": 2.1}}`))
	}))
	defer coingeckoServer.Close()

	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	cache, err := pricecache.NewStore(db, 5*time.Minute)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	limiter := ratelimit.NewUnlimited()
	agg := aggregator.New(cache,
		coingecko.New("", coingeckoServer.URL, limiter),
		alphavantage.New("test_key", alphavantageServer.URL, limiter),
		fallback.New(),
		aggregator.WithTimeout(5*time.Second),
	)

	ctx := context.Background()

	// First call: empty cache, both providers consulted.
	got := agg.Resolve(ctx, []string{"AAPL", "BTC", "FAKEXYZ"})

	if len(got) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(got))
	}

	aapl := got["AAPL"]
	if aapl == nil {
		t.Fatal("AAPL missing from results")
	}
	if aapl.Price.String() != "182.5" || aapl.Source != pricing.SourceAlphaVantage {
		t.Errorf("AAPL = %s from %s, want 182.5 from %s", aapl.Price, aapl.Source, pricing.SourceAlphaVantage)
	}

	btc := got["BTC"]
	if btc == nil {
		t.Fatal("BTC missing from results")
	}
	if btc.Price.String() != "65000" || btc.Source != pricing.SourceCoinGecko {
		t.Errorf("BTC = %s from %s, want 65000 from %s", btc.Price, btc.Source, pricing.SourceCoinGecko)
	}

	if got["FAKEXYZ"] != nil {
		t.Errorf("FAKEXYZ = %+v, want absent", got["FAKEXYZ"])
	}

	if equityCalls.Load() != 1 || cryptoCalls.Load() != 1 {
		t.Errorf("provider calls = %d equity, %d crypto, want 1 each", equityCalls.Load(), cryptoCalls.Load())
	}

	// Second call moments later: served entirely from the cache.
	again := agg.Resolve(ctx, []string{"AAPL", "BTC", "FAKEXYZ"})

	if equityCalls.Load() != 1 || cryptoCalls.Load() != 1 {
		t.Errorf("cached resolve made provider calls: %d equity, %d crypto", equityCalls.Load(), cryptoCalls.Load())
	}
	if !again["AAPL"].Price.Equal(aapl.Price) || !again["BTC"].Price.Equal(btc.Price) {
		t.Error("cached records differ from the original fetch")
	}
}

// TestIntegration_EquityOutageFallsBack verifies the degraded path: the
// equity upstream is down, so the caller gets the static reference price
// and that substitute is cached.
func TestIntegration_EquityOutageFallsBack(t *testing.T) {
	alphavantageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer alphavantageServer.Close()

	cache := pricecache.NewMemory(5 * time.Minute)
	limiter := ratelimit.NewUnlimited()
	agg := aggregator.New(cache,
		coingecko.New("", alphavantageServer.URL, limiter),
		alphavantage.New("test_key", alphavantageServer.URL, limiter),
		fallback.New(),
		aggregator.WithTimeout(2*time.Second),
	)

	ctx := context.Background()
	got := agg.Resolve(ctx, []string{"TSLA"})

	tsla := got["TSLA"]
	if tsla == nil {
		t.Fatal("TSLA missing from results")
	}
	if tsla.Source != pricing.SourceFallback {
		t.Errorf("TSLA source = %s, want %s", tsla.Source, pricing.SourceFallback)
	}
	if !tsla.Price.IsPositive() {
		t.Errorf("TSLA fallback price = %s, want the static reference value", tsla.Price)
	}

	cached, ok, err := cache.Get(ctx, "TSLA")
	if err != nil || !ok {
		t.Fatalf("fallback record not cached: ok=%v err=%v", ok, err)
	}
	if cached.Source != pricing.SourceFallback {
		t.Errorf("cached source = %s, want %s", cached.Source, pricing.SourceFallback)
	}
}
