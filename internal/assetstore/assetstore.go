// Package assetstore holds the user asset records the rest of the system
// resolves prices for. Only the surface consumed by the pricing engine
// lives here; account management sits elsewhere.
package assetstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"assettracker/internal/symbols"
)

// Asset is one holding of one user.
type Asset struct {
	UserID    string
	Symbol    string
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal
}

// Store persists assets in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open database and runs the asset migration.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate asset store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			quantity   TEXT NOT NULL,
			cost_basis TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_user ON assets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_symbol ON assets(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts one asset record. The symbol is normalized on the way in so
// DistinctSymbols never has to reconcile case variants.
func (s *Store) Add(ctx context.Context, a Asset) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (user_id, symbol, quantity, cost_basis) VALUES (?, ?, ?, ?)`,
		a.UserID, symbols.Normalize(a.Symbol), a.Quantity.String(), a.CostBasis.String())
	if err != nil {
		return fmt.Errorf("insert asset %s for %s: %w", a.Symbol, a.UserID, err)
	}
	return nil
}

// DistinctSymbols lists every distinct symbol held by one user, or by all
// users when userID is empty. Used for portfolio valuation and for the
// scheduled refresh across all known symbols.
func (s *Store) DistinctSymbols(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT DISTINCT symbol FROM assets`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list distinct symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, symbols.Normalize(sym))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}

	sort.Strings(out)
	return out, nil
}
