package wizard

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically drops idle sessions from a SessionStore.
type Janitor struct {
	store    SessionStore
	interval time.Duration
	logger   *zap.Logger
}

// NewJanitor builds a cleanup loop. A non-positive interval defaults to one
// minute.
func NewJanitor(store SessionStore, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{store: store, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, sweeping expired sessions once per
// interval.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := j.store.Cleanup(ctx); dropped > 0 {
				j.logger.Info("expired wizard sessions dropped", zap.Int("count", dropped))
			}
		}
	}
}
