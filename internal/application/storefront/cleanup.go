package storefront

import (
	"context"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
)

// CleanupWorker evicts idle profiles on a fixed interval
type CleanupWorker struct {
	manager  *Manager
	interval time.Duration
	logger   *logging.ChanneledLogger
}

// NewCleanupWorker creates a worker for manager
func NewCleanupWorker(manager *Manager, interval time.Duration, logger *logging.ChanneledLogger) *CleanupWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CleanupWorker{manager: manager, interval: interval, logger: logger}
}

// Start runs until ctx is cancelled
func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.System().Info("Profile cleanup worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Profile cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single eviction pass
func (w *CleanupWorker) RunOnce() int {
	start := time.Now()
	evicted := w.manager.EvictIdle()
	if evicted > 0 {
		w.logger.System().Info("Idle profiles evicted",
			"evicted", evicted, "remaining", w.manager.Count(), "duration", time.Since(start))
	}
	return evicted
}
