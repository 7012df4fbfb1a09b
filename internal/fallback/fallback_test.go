package fallback

import (
	"testing"

	"assettracker/internal/pricing"
)

func TestPrice_Deterministic(t *testing.T) {
	policy := New()

	first := policy.Price("TSLA")
	second := policy.Price("TSLA")

	if !first.Price.Equal(second.Price) {
		t.Errorf("fallback price not deterministic: %s vs %s", first.Price, second.Price)
	}
	if first.Price.IsZero() {
		t.Error("TSLA should have a reference price")
	}
}

func TestPrice_TagsAndTimestamp(t *testing.T) {
	policy := New()

	rec := policy.Price("aapl")

	if rec.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", rec.Symbol)
	}
	if rec.Source != pricing.SourceFallback {
		t.Errorf("Source = %q, want %q", rec.Source, pricing.SourceFallback)
	}
	if rec.ObservedAt.IsZero() {
		t.Error("ObservedAt is zero")
	}
}

func TestPrice_UnknownSymbolAlwaysSucceeds(t *testing.T) {
	policy := New()

	rec := policy.Price("ZZZZZ")

	if !rec.Price.IsZero() {
		t.Errorf("unknown symbol price = %s, want 0", rec.Price)
	}
	if rec.Price.IsNegative() {
		t.Error("fallback price must never be negative")
	}
	if rec.Source != pricing.SourceFallback {
		t.Errorf("Source = %q, want %q", rec.Source, pricing.SourceFallback)
	}
}
