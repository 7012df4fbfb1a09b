package testutil

import (
	"context"
	"sync"

	"assettracker/internal/pricing"
)

// MockBatchProvider is a scripted BatchProvider that counts calls.
type MockBatchProvider struct {
	FetchBatchFunc func(ctx context.Context, syms []string) (map[string]pricing.Record, error)

	mu      sync.Mutex
	calls   int
	batches [][]string
}

// Name implements pricing.BatchProvider
func (m *MockBatchProvider) Name() string { return "mock-batch" }

// FetchBatch implements pricing.BatchProvider
func (m *MockBatchProvider) FetchBatch(ctx context.Context, syms []string) (map[string]pricing.Record, error) {
	m.mu.Lock()
	m.calls++
	m.batches = append(m.batches, append([]string(nil), syms...))
	m.mu.Unlock()

	if m.FetchBatchFunc != nil {
		return m.FetchBatchFunc(ctx, syms)
	}
	return map[string]pricing.Record{}, nil
}

// Calls reports how many times FetchBatch ran.
func (m *MockBatchProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Batches returns the symbol slices of every call, in order.
func (m *MockBatchProvider) Batches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}

// MockSingleProvider is a scripted SingleProvider that counts calls.
type MockSingleProvider struct {
	FetchFunc func(ctx context.Context, sym string) (pricing.Record, error)

	mu    sync.Mutex
	calls int
}

// Name implements pricing.SingleProvider
func (m *MockSingleProvider) Name() string { return "mock-single" }

// Fetch implements pricing.SingleProvider
func (m *MockSingleProvider) Fetch(ctx context.Context, sym string) (pricing.Record, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, sym)
	}
	return pricing.Record{}, pricing.NewValidationError("no script for " + sym)
}

// Calls reports how many times Fetch ran.
func (m *MockSingleProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FaultyCache wraps a real cache and injects errors, for exercising the
// cache-unavailable paths.
type FaultyCache struct {
	Inner  pricing.Cache
	GetErr error
	PutErr error
}

// Get implements pricing.Cache
func (f *FaultyCache) Get(ctx context.Context, symbol string) (pricing.Record, bool, error) {
	if f.GetErr != nil {
		return pricing.Record{}, false, f.GetErr
	}
	return f.Inner.Get(ctx, symbol)
}

// Put implements pricing.Cache
func (f *FaultyCache) Put(ctx context.Context, rec pricing.Record) error {
	if f.PutErr != nil {
		return f.PutErr
	}
	return f.Inner.Put(ctx, rec)
}

// Sweep implements pricing.Cache
func (f *FaultyCache) Sweep(ctx context.Context) (int64, error) {
	return f.Inner.Sweep(ctx)
}
