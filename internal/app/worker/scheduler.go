package worker

import (
	"context"
	"fmt"
	"time"

	"ffclash/internal/platform/logger"

	"github.com/go-co-op/gocron/v2"
)

type TokenPurger interface {
	PurgeStale(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	sched gocron.Scheduler
}

func NewScheduler(purger TokenPurger, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			PurgeResetTokens(context.Background(), purger)
		}),
		gocron.WithName("purge-reset-tokens"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule token purge: %w", err)
	}
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	logger.Info("Scheduler started.")
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func PurgeResetTokens(ctx context.Context, purger TokenPurger) {
	n, err := purger.PurgeStale(ctx)
	if err != nil {
		logger.Errorf("[Scheduler] Failed to purge reset tokens: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("[Scheduler] Purged %d stale reset tokens", n)
	}
}
