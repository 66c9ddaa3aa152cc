package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codyseavey/mtg-oracle/internal/metrics"
)

type expiredPruner interface {
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// CacheJanitor periodically deletes expired translations from the sqlite
// store. Redis expires keys itself and needs no janitor.
type CacheJanitor struct {
	store    expiredPruner
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewCacheJanitor creates a janitor that runs every interval
func NewCacheJanitor(store expiredPruner, interval time.Duration, log *zap.Logger) *CacheJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CacheJanitor{
		store:    store,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start prunes once immediately, then on every tick until ctx is cancelled.
func (j *CacheJanitor) Start(ctx context.Context) {
	j.log.Info("cache janitor started", zap.Duration("interval", j.interval))

	j.PruneOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("cache janitor stopping")
			return
		case <-ticker.C:
			j.PruneOnce(ctx)
		}
	}
}

// PruneOnce runs a single pass and returns the number of rows removed.
func (j *CacheJanitor) PruneOnce(ctx context.Context) int64 {
	n, err := j.store.Prune(ctx, j.now())
	if err != nil {
		metrics.TranslationCacheErrors.WithLabelValues("prune").Inc()
		j.log.Warn("cache janitor: prune failed", zap.Error(err))
		return 0
	}
	if n > 0 {
		metrics.TranslationCachePruned.Add(float64(n))
		j.log.Info("cache janitor: pruned expired translations", zap.Int64("rows", n))
	}
	return n
}
