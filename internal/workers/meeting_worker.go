package workers

import (
	"context"
	"time"

	"dealflow_backend/internal/logger"
)

// MeetingCompleter closes meetings whose end time has passed.
type MeetingCompleter interface {
	CompleteEndedMeetings(ctx context.Context, before time.Time) (int64, error)
}

type MeetingWorker struct {
	meetings MeetingCompleter
	interval time.Duration
	now      func() time.Time
}

func NewMeetingWorker(meetings MeetingCompleter, interval time.Duration) *MeetingWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &MeetingWorker{meetings: meetings, interval: interval, now: time.Now}
}

// Start marks ended meetings COMPLETED every interval until ctx is cancelled.
func (w *MeetingWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *MeetingWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog("meetings", "stop", nil)
			return
		case <-ticker.C:
			w.completeEnded(ctx)
		}
	}
}

func (w *MeetingWorker) completeEnded(ctx context.Context) {
	n, err := w.meetings.CompleteEndedMeetings(ctx, w.now().UTC())
	if err != nil {
		logger.WorkerLog("meetings", "complete_ended", err)
		return
	}
	if n > 0 {
		logger.WorkerLog("meetings", "complete_ended", nil, "completed", n)
	}
}
