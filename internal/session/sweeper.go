package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSweeper removes expired sessions from store every interval until ctx
// is canceled. Validation still sweeps lazily; this only bounds how long
// abandoned sessions stay in memory.
func StartSweeper(
	ctx context.Context,
	store Store,
	interval time.Duration,
	log *zap.Logger,
) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.SweepExpired(ctx); removed > 0 {
					log.Info("swept expired admin sessions", zap.Int("removed", removed))
				}
			}
		}
	}()
}
