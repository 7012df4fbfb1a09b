// Package pricecache implements the TTL-bounded price cache. The durable
// variant is backed by SQLite so cached prices survive process restarts;
// the in-memory variant serves tests and database-less runs.
package pricecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"assettracker/internal/pricing"
	"assettracker/internal/symbols"
)

// Store is the SQLite-backed cache. Rows past the TTL read as absent but
// stay on disk until Sweep deletes them.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore wraps an open database and runs the cache migration.
func NewStore(db *sql.DB, ttl time.Duration) (*Store, error) {
	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate price cache: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS price_cache (
		symbol             TEXT PRIMARY KEY,
		price              TEXT NOT NULL,
		change_24h         TEXT,
		change_percent_24h TEXT,
		source             TEXT NOT NULL,
		observed_at        INTEGER NOT NULL
	)`)
	return err
}

// Get returns the cached record for a symbol, or ok=false when the record
// is missing or older than the TTL.
func (s *Store) Get(ctx context.Context, symbol string) (pricing.Record, bool, error) {
	sym := symbols.Normalize(symbol)

	var (
		priceRaw   string
		changeRaw  sql.NullString
		percentRaw sql.NullString
		sourceRaw  string
		observedMs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT price, change_24h, change_percent_24h, source, observed_at
		 FROM price_cache WHERE symbol = ?`, sym).
		Scan(&priceRaw, &changeRaw, &percentRaw, &sourceRaw, &observedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Record{}, false, nil
	}
	if err != nil {
		return pricing.Record{}, false, fmt.Errorf("read price cache for %s: %w", sym, err)
	}

	observed := time.UnixMilli(observedMs)
	if s.now().Sub(observed) > s.ttl {
		// Expired rows are logically absent; Sweep handles deletion.
		return pricing.Record{}, false, nil
	}

	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		return pricing.Record{}, false, fmt.Errorf("corrupt cached price %q for %s: %w", priceRaw, sym, err)
	}

	rec := pricing.Record{
		Symbol:     sym,
		Price:      price,
		ObservedAt: observed,
		Source:     pricing.Source(sourceRaw),
	}
	if changeRaw.Valid {
		if d, err := decimal.NewFromString(changeRaw.String); err == nil {
			rec.Change24h = &d
		}
	}
	if percentRaw.Valid {
		if d, err := decimal.NewFromString(percentRaw.String); err == nil {
			rec.ChangePercent24h = &d
		}
	}
	return rec, true, nil
}

// Put upserts the full record for its symbol. The single upsert statement
// makes same-symbol races resolve to one clean winner.
func (s *Store) Put(ctx context.Context, rec pricing.Record) error {
	var change, percent any
	if rec.Change24h != nil {
		change = rec.Change24h.String()
	}
	if rec.ChangePercent24h != nil {
		percent = rec.ChangePercent24h.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_cache (symbol, price, change_24h, change_percent_24h, source, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
			price = excluded.price,
			change_24h = excluded.change_24h,
			change_percent_24h = excluded.change_percent_24h,
			source = excluded.source,
			observed_at = excluded.observed_at`,
		symbols.Normalize(rec.Symbol), rec.Price.String(), change, percent,
		string(rec.Source), rec.ObservedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("write price cache for %s: %w", rec.Symbol, err)
	}
	return nil
}

// Sweep deletes every record older than the TTL and reports how many
// rows went away.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM price_cache WHERE observed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep price cache: %w", err)
	}
	return res.RowsAffected()
}
