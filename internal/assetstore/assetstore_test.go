package assetstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"assettracker/internal/sqlitedb"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func asset(userID, symbol, qty string) Asset {
	return Asset{
		UserID:    userID,
		Symbol:    symbol,
		Quantity:  decimal.RequireFromString(qty),
		CostBasis: decimal.RequireFromString("100"),
	}
}

func TestDistinctSymbols_AllUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, asset("alice", "AAPL", "10")))
	require.NoError(t, store.Add(ctx, asset("alice", "btc", "0.5")))
	require.NoError(t, store.Add(ctx, asset("bob", "aapl", "3")))
	require.NoError(t, store.Add(ctx, asset("bob", "TSLA", "2")))

	syms, err := store.DistinctSymbols(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL", "BTC", "TSLA"}, syms)
}

func TestDistinctSymbols_SingleUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, asset("alice", "AAPL", "10")))
	require.NoError(t, store.Add(ctx, asset("bob", "TSLA", "2")))

	syms, err := store.DistinctSymbols(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL"}, syms)
}

func TestDistinctSymbols_Empty(t *testing.T) {
	store := newTestStore(t)

	syms, err := store.DistinctSymbols(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, syms)
}
