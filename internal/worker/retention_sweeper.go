package worker

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/conf"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 5 * time.Minute

// Purger deletes audit records older than a number of days.
type Purger interface {
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

// RetentionSweeper periodically evicts audit records past the retention horizon.
// It complements the TTL index and is safe to run next to it and to manual purges.
type RetentionSweeper struct {
	cron   *cron.Cron
	purger Purger
	days   int
	logger *zap.Logger
}

// NewRetentionSweeper schedules the sweep on cfg.SweepSchedule. An empty schedule disables it.
func NewRetentionSweeper(purger Purger, cfg *conf.AuditConfig, logger *zap.Logger) (*RetentionSweeper, error) {
	named := logger.Named("RetentionSweeper")
	cronLogger := cron.PrintfLogger(zap.NewStdLog(named))

	w := &RetentionSweeper{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		purger: purger,
		days:   cfg.RetentionDays,
		logger: named,
	}

	if cfg.SweepSchedule != "" {
		if _, err := w.cron.AddFunc(cfg.SweepSchedule, w.sweep); err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
		}
	}
	return w, nil
}

func (w *RetentionSweeper) Name() string { return "retention-sweeper" }

// Start runs the schedule until ctx is done and waits for a running sweep to finish.
func (w *RetentionSweeper) Start(ctx context.Context) {
	if len(w.cron.Entries()) == 0 {
		w.logger.Info("Retention sweeper disabled")
		<-ctx.Done()
		return
	}

	w.logger.Info("Retention sweeper started", zap.Int("retentionDays", w.days))
	w.cron.Start()
	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.logger.Info("Retention sweeper shutting down")
}

func (w *RetentionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := w.purger.PurgeOlderThan(ctx, w.days)
	if err != nil {
		w.logger.Error("sweep: failed to purge expired audit logs", zap.Error(err))
		return
	}
	w.logger.Debug("sweep: expired audit logs purged", zap.Int64("deleted", deleted))
}
