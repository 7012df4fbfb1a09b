package pricecache

import (
	"context"
	"sync"
	"time"

	"assettracker/internal/pricing"
	"assettracker/internal/symbols"
)

// Memory is the in-process cache. Same contract as Store, nothing survives
// a restart.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	records map[string]pricing.Record
}

// NewMemory creates an empty in-memory cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		records: make(map[string]pricing.Record),
	}
}

// Get returns the cached record, or ok=false when missing or expired.
func (m *Memory) Get(_ context.Context, symbol string) (pricing.Record, bool, error) {
	sym := symbols.Normalize(symbol)

	m.mu.RLock()
	rec, ok := m.records[sym]
	m.mu.RUnlock()

	if !ok || rec.Age(m.now()) > m.ttl {
		return pricing.Record{}, false, nil
	}
	return rec, true, nil
}

// Put upserts the full record for its symbol, last writer wins.
func (m *Memory) Put(_ context.Context, rec pricing.Record) error {
	rec.Symbol = symbols.Normalize(rec.Symbol)

	m.mu.Lock()
	m.records[rec.Symbol] = rec
	m.mu.Unlock()
	return nil
}

// Sweep drops every expired record.
func (m *Memory) Sweep(_ context.Context) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for sym, rec := range m.records {
		if rec.Age(now) > m.ttl {
			delete(m.records, sym)
			removed++
		}
	}
	return removed, nil
}
