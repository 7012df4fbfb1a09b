package pricing

import "context"

// BatchProvider fetches quotes for many symbols in a single upstream call.
// Upstream rate limits are call-count based, so batching is the whole point:
// one FetchBatch must issue at most one network request.
//
// Symbols the provider cannot map to an upstream asset are simply omitted
// from the result, without a network call. A partial upstream payload yields
// a partial map; only a total request failure returns an error.
type BatchProvider interface {
	Name() string
	FetchBatch(ctx context.Context, symbols []string) (map[string]Record, error)
}

// SingleProvider fetches a quote for one symbol per upstream call.
// Any miss (missing field, zero price, transport failure) is an error;
// callers decide what to substitute.
type SingleProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (Record, error)
}

// Cache is a symbol-keyed store of last-known prices with a fixed TTL.
//
// Get reports ok=false for both missing and expired records; expired rows
// need not be deleted eagerly, Sweep exists to bound storage growth.
// Put upserts the full record, last writer wins. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, symbol string) (Record, bool, error)
	Put(ctx context.Context, rec Record) error
	Sweep(ctx context.Context) (int64, error)
}

// Fallback supplies a deterministic substitute price when no live quote
// can be obtained. It always succeeds.
type Fallback interface {
	Price(symbol string) Record
}
