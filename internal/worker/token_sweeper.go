// Package worker runs background maintenance for the serve command.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredTokenStore defines the store operation needed by the sweeper.
// Implemented by store.SQLiteStore.
type ExpiredTokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenSweeper periodically removes expired tokens from the local cache.
type TokenSweeper struct {
	store    ExpiredTokenStore
	interval time.Duration
	now      func() time.Time
}

// NewTokenSweeper creates a sweeper that runs every interval.
func NewTokenSweeper(store ExpiredTokenStore, interval time.Duration) *TokenSweeper {
	return &TokenSweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the sweep loop. Blocks until ctx is cancelled.
// The first sweep happens one interval after start.
func (w *TokenSweeper) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "token-sweeper",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "token-sweeper",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single cycle and returns the number of tokens removed.
func (w *TokenSweeper) Sweep(ctx context.Context) int64 {
	start := w.now()

	removed, err := w.store.DeleteExpired(ctx, start)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		slog.Error("token sweep failed",
			"component", "worker",
			"worker", "token-sweeper",
			"error", err,
		)
		return 0
	}

	if removed > 0 {
		slog.Info("expired tokens removed",
			"component", "worker",
			"worker", "token-sweeper",
			"removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return removed
}
