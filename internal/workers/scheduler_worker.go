package workers

import (
	"context"
	"time"

	"dealflow_backend/internal/logger"
	"dealflow_backend/internal/services/dto"
)

// AutoScheduler is the part of the scheduler service the worker drives.
type AutoScheduler interface {
	RunScheduler(ctx context.Context) dto.RunSummary
}

// SchedulerWorker triggers an auto-arrangement run on a fixed interval.
// Runs never overlap: the next tick is only read after the previous run returns.
type SchedulerWorker struct {
	scheduler AutoScheduler
	interval  time.Duration
}

func NewSchedulerWorker(scheduler AutoScheduler, interval time.Duration) *SchedulerWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SchedulerWorker{scheduler: scheduler, interval: interval}
}

// Start launches the loop; it stops when ctx is cancelled.
func (w *SchedulerWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *SchedulerWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.WorkerLog("scheduler", "start", nil, "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog("scheduler", "stop", nil)
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SchedulerWorker) runOnce(ctx context.Context) dto.RunSummary {
	summary := w.scheduler.RunScheduler(ctx)
	logger.WorkerLog("scheduler", "run", nil,
		"correlation_id", summary.CorrelationID,
		"scheduled", summary.Scheduled,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"timed_out", summary.TimedOut)
	return summary
}
