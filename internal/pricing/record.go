package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies where a price number came from. It is stored on every
// record so downstream consumers (valuation, auditing) can tell a live quote
// from a substitute. Provenance is never re-derived from classification
// tables at read time.
type Source string

const (
	// SourceCoinGecko marks prices obtained from the CoinGecko batch API.
	SourceCoinGecko Source = "coingecko"
	// SourceAlphaVantage marks prices obtained from the AlphaVantage quote API.
	SourceAlphaVantage Source = "alphavantage"
	// SourceFallback marks deterministic substitute prices.
	SourceFallback Source = "fallback"
)

// Record is the canonical price for a single symbol, quoted in USD.
type Record struct {
	// Symbol is the normalized (upper-case) asset identifier.
	Symbol string `json:"symbol"`

	// Price is the current price, always >= 0.
	Price decimal.Decimal `json:"price"`

	// Change24h and ChangePercent24h are nil when the upstream
	// does not supply them.
	Change24h        *decimal.Decimal `json:"change_24h,omitempty"`
	ChangePercent24h *decimal.Decimal `json:"change_percent_24h,omitempty"`

	// ObservedAt is when the price was obtained from the upstream
	// (or computed, for fallbacks) - not when it was cached.
	ObservedAt time.Time `json:"observed_at"`

	Source Source `json:"source"`
}

// Age reports how old the record is relative to now.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.ObservedAt)
}
