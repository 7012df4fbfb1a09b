// Package aggregator orchestrates price resolution: classify, consult the
// cache, call providers (batched where the upstream allows it), substitute
// fallbacks, and write everything obtained back to the cache.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"assettracker/internal/pricing"
	"assettracker/internal/symbols"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultEquityLimit = 4
)

// Aggregator resolves prices for heterogeneous symbol sets. All
// collaborators are injected; tests swap in an in-memory cache and
// scripted providers.
type Aggregator struct {
	cache    pricing.Cache
	crypto   pricing.BatchProvider
	equity   pricing.SingleProvider
	fallback pricing.Fallback

	timeout     time.Duration
	equityLimit int
	logger      *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout bounds every upstream interaction of one Resolve call.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// WithEquityConcurrency caps how many equity fetches run at once.
func WithEquityConcurrency(n int) Option {
	return func(a *Aggregator) { a.equityLimit = n }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// New creates an Aggregator over the given collaborators.
func New(cache pricing.Cache, crypto pricing.BatchProvider, equity pricing.SingleProvider, fb pricing.Fallback, opts ...Option) *Aggregator {
	a := &Aggregator{
		cache:       cache,
		crypto:      crypto,
		equity:      equity,
		fallback:    fb,
		timeout:     defaultTimeout,
		equityLimit: defaultEquityLimit,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolve returns one entry per requested symbol: a record for every symbol
// classified as crypto or equity (live, cached, or fallback - never
// missing), nil for unsupported symbols. The key set always equals the
// normalized, de-duplicated input.
//
// Upstream calls run on a context detached from the caller's: an abandoned
// request lets in-flight fetches finish and warm the cache for the next
// caller, bounded by the configured timeout.
func (a *Aggregator) Resolve(ctx context.Context, syms []string) map[string]*pricing.Record {
	out := make(map[string]*pricing.Record, len(syms))
	var crypto, equity []string

	for _, raw := range syms {
		sym := symbols.Normalize(raw)
		if _, seen := out[sym]; seen {
			continue
		}
		out[sym] = nil
		switch symbols.Classify(sym) {
		case symbols.Crypto:
			crypto = append(crypto, sym)
		case symbols.Equity:
			equity = append(equity, sym)
		default:
			a.logger.Debug("symbol unsupported", "symbol", sym)
		}
	}

	classified := make([]string, 0, len(crypto)+len(equity))
	classified = append(classified, crypto...)
	classified = append(classified, equity...)

	crypto = a.takeCached(ctx, crypto, out)
	equity = a.takeCached(ctx, equity, out)

	if len(crypto) > 0 || len(equity) > 0 {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		a.fetchCrypto(fetchCtx, crypto, out)
		a.fetchEquities(fetchCtx, equity, out)
	}

	// Every classified symbol still unresolved gets a deterministic
	// substitute, cached like any other record.
	for _, sym := range classified {
		if out[sym] != nil {
			continue
		}
		rec := a.fallback.Price(sym)
		a.logger.Info("using fallback price", "symbol", sym, "price", rec.Price)
		a.store(ctx, rec, out)
	}

	return out
}

// takeCached fills out with fresh cache hits and returns the symbols that
// still need a provider call. Cache read failures count as misses.
func (a *Aggregator) takeCached(ctx context.Context, syms []string, out map[string]*pricing.Record) []string {
	var missing []string
	for _, sym := range syms {
		rec, ok, err := a.cache.Get(ctx, sym)
		if err != nil {
			a.logger.Warn("cache read failed, forcing provider call", "symbol", sym, "error", err)
			missing = append(missing, sym)
			continue
		}
		if !ok {
			missing = append(missing, sym)
			continue
		}
		r := rec
		out[sym] = &r
	}
	return missing
}

// fetchCrypto issues at most one batch call for all missing crypto symbols.
func (a *Aggregator) fetchCrypto(ctx context.Context, syms []string, out map[string]*pricing.Record) {
	if len(syms) == 0 {
		return
	}

	recs, err := a.crypto.FetchBatch(ctx, syms)
	if err != nil {
		// The whole batch falls through to the fallback pass.
		a.logger.Warn("crypto batch fetch failed", "provider", a.crypto.Name(), "symbols", len(syms), "error", err)
		return
	}
	for _, sym := range syms {
		rec, ok := recs[sym]
		if !ok {
			continue
		}
		a.store(ctx, rec, out)
	}
}

// fetchEquities fans out one fetch per symbol with bounded concurrency.
// Per-symbol failures are logged and left for the fallback pass; ordering
// across symbols is not significant.
func (a *Aggregator) fetchEquities(ctx context.Context, syms []string, out map[string]*pricing.Record) {
	if len(syms) == 0 {
		return
	}

	results := make(chan pricing.Record, len(syms))

	var g errgroup.Group
	g.SetLimit(a.equityLimit)
	for _, sym := range syms {
		sym := sym
		g.Go(func() error {
			rec, err := a.equity.Fetch(ctx, sym)
			if err != nil {
				a.logger.Warn("equity fetch failed", "provider", a.equity.Name(), "symbol", sym, "error", err)
				return nil
			}
			results <- rec
			return nil
		})
	}
	g.Wait()
	close(results)

	for rec := range results {
		a.store(ctx, rec, out)
	}
}

// store records a result and writes it through to the cache. A failed cache
// write never fails the resolve call.
func (a *Aggregator) store(ctx context.Context, rec pricing.Record, out map[string]*pricing.Record) {
	r := rec
	out[rec.Symbol] = &r
	if err := a.cache.Put(ctx, rec); err != nil {
		a.logger.Warn("cache write failed", "symbol", rec.Symbol, "error", err)
	}
}
