package blacklist

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner sweeps expired blacklist entries on a fixed interval so the
// table stays bounded. One goroutine, one ticker; runs never overlap.
type Cleaner struct {
	store    *Store
	interval time.Duration
}

func NewCleaner(store *Store, interval time.Duration) *Cleaner {
	return &Cleaner{store: store, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Sweep failures are logged and retried naturally on the next tick.
func (c *Cleaner) Run(ctx context.Context) {
	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Token cleanup stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	deleted, err := c.store.SweepExpired(ctx, time.Now())
	if err != nil {
		slog.Error("Error during token cleanup", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Cleaned up expired blacklisted tokens", "count", deleted)
	} else {
		slog.Debug("No expired blacklisted tokens to clean up")
	}
}
