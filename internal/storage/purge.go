package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger drops items that have not been written for longer than idle.
type Purger interface {
	PurgeIdle(ctx context.Context, idle time.Duration) (int64, error)
}

// PurgeLoop calls p.PurgeIdle every interval until ctx is done. Failures are logged and
// retried on the next tick.
func PurgeLoop(ctx context.Context, p Purger, idle, interval time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeIdle(ctx, idle)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("purge idle sessions failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged idle session items", zap.Int64("items", n))
			}
		}
	}
}
