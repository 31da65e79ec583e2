package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/pkg/logger"
)

// deletionLister is the slice of the deletion audit repository the sweep needs
type deletionLister interface {
	ListSince(ctx context.Context, since time.Time) ([]*entities.AccountDeletion, error)
}

// passRunner re-runs the idempotent cleanup cascade for one deleted account
type passRunner interface {
	RunSecondaryPasses(ctx context.Context, userID uuid.UUID) error
}

// AnonymizationSweepJob periodically re-runs the secondary anonymization
// passes for recently deleted accounts. The deletion workflow runs these
// passes inline, but a crash or store outage can leave usage rows or failed
// deductions behind; the sweep catches up because every pass is idempotent.
type AnonymizationSweepJob struct {
	deletions deletionLister
	runner    passRunner
	interval  time.Duration
	lookback  time.Duration
	stop      chan struct{}
}

func NewAnonymizationSweepJob(deletions deletionLister, runner passRunner, interval, lookback time.Duration) *AnonymizationSweepJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &AnonymizationSweepJob{
		deletions: deletions,
		runner:    runner,
		interval:  interval,
		lookback:  lookback,
		stop:      make(chan struct{}),
	}
}

func (j *AnonymizationSweepJob) Start(ctx context.Context) {
	logger.Info(ctx, "anonymization sweep started",
		zap.Duration("interval", j.interval),
		zap.Duration("lookback", j.lookback))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "anonymization sweep stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "anonymization sweep stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *AnonymizationSweepJob) Stop() {
	close(j.stop)
}

func (j *AnonymizationSweepJob) sweep(ctx context.Context) {
	since := time.Now().Add(-j.lookback)
	recent, err := j.deletions.ListSince(ctx, since)
	if err != nil {
		logger.Error(ctx, "anonymization sweep: listing recent deletions failed", zap.Error(err))
		return
	}
	if len(recent) == 0 {
		return
	}

	for _, record := range recent {
		if err := j.runner.RunSecondaryPasses(ctx, record.UserID); err != nil {
			logger.Error(ctx, "anonymization sweep: pass failed",
				zap.String("user_id", record.UserID.String()),
				zap.Error(err))
		}
	}

	logger.Debug(ctx, "anonymization sweep pass complete", zap.Int("accounts", len(recent)))
}
