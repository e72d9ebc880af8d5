package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically deletes unfinished snapshots nobody has touched
// within the retention window
type Janitor struct {
	cron      *cron.Cron
	store     Store
	retention time.Duration
	schedule  string
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
	running   bool
}

// NewJanitor creates a janitor running on schedule, a standard cron expression or
// a descriptor such as "@every 1h"
func NewJanitor(store Store, retention time.Duration, schedule string, logger *zap.Logger) *Janitor {
	return &Janitor{
		cron:      cron.New(),
		store:     store,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the purge job and starts the scheduler
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return fmt.Errorf("session janitor already running")
	}
	if j.retention <= 0 {
		return fmt.Errorf("invalid session retention %s", j.retention)
	}

	if _, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("Session purge failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", j.schedule, err)
	}

	j.logger.Info("Starting session janitor",
		zap.String("schedule", j.schedule),
		zap.Duration("retention", j.retention),
	)
	j.cron.Start()
	j.running = true
	return nil
}

// Stop stops the scheduler and waits for a running purge to finish
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
	j.logger.Info("Session janitor stopped")
}

// RunOnce purges stale snapshots immediately and returns how many went
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.store.PurgeStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}
	j.logger.Info("Purged stale sessions", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	return n, nil
}
