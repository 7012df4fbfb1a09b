// Package scheduler runs the periodic portfolio-wide refresh and the cache
// sweep on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"assettracker/internal/pricing"
)

// SymbolSource lists the symbols worth keeping warm.
type SymbolSource interface {
	DistinctSymbols(ctx context.Context, userID string) ([]string, error)
}

// Resolver resolves prices for a symbol set.
type Resolver interface {
	Resolve(ctx context.Context, syms []string) map[string]*pricing.Record
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	cron     *cron.Cron
	assets   SymbolSource
	resolver Resolver
	cache    pricing.Cache
	logger   *slog.Logger

	taskTimeout time.Duration
}

// New creates a Scheduler over the given collaborators.
func New(assets SymbolSource, resolver Resolver, cache pricing.Cache, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		assets:      assets,
		resolver:    resolver,
		cache:       cache,
		logger:      logger,
		taskTimeout: 2 * time.Minute,
	}
}

// Register wires the refresh and sweep tasks to their cron specs.
func (s *Scheduler) Register(refreshSpec, sweepSpec string) error {
	if _, err := s.cron.AddFunc(refreshSpec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.cron.AddFunc(sweepSpec, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

// RefreshNow runs the refresh task immediately (startup warm-up).
func (s *Scheduler) RefreshNow() {
	s.refreshTask()
}

// refreshTask resolves prices for every distinct symbol across all users,
// warming the cache so interactive valuation requests hit it.
func (s *Scheduler) refreshTask() {
	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	syms, err := s.assets.DistinctSymbols(ctx, "")
	if err != nil {
		s.logger.Error("refresh: list symbols", "error", err)
		return
	}
	if len(syms) == 0 {
		s.logger.Debug("refresh: no symbols to price")
		return
	}

	results := s.resolver.Resolve(ctx, syms)

	var priced, unsupported int
	for _, rec := range results {
		if rec == nil {
			unsupported++
			continue
		}
		priced++
	}
	s.logger.Info("refresh complete", "symbols", len(syms), "priced", priced, "unsupported", unsupported)
}

// sweepTask deletes expired cache rows to bound storage growth.
func (s *Scheduler) sweepTask() {
	ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
	defer cancel()

	n, err := s.cache.Sweep(ctx)
	if err != nil {
		s.logger.Error("cache sweep failed", "error", err)
		return
	}
	s.logger.Info("cache sweep complete", "removed", n)
}
