package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/internal/queue"
)

// DefaultStuckAfter is how long a PENDING log may sit without a send job
// before the sweep re-enqueues it. Covers crashes between persisting a log
// and inserting its job.
const DefaultStuckAfter = 10 * time.Minute

// stuckLister is the slice of email.LogStore the sweep needs.
type stuckLister interface {
	ListStuckPending(ctx context.Context, createdBefore time.Time) ([]string, error)
}

// RequeueStuck periodically re-enqueues PENDING logs that lost their send
// job. Sweep inserts are unique per log id within the dedupe window, so
// repeated sweeps cannot stack jobs for one log. A log whose original job
// turns out to be alive after all can still pick up one duplicate; the
// dispatcher's status guard skips it once the log moves past PENDING.
type RequeueStuck struct {
	logs       stuckLister
	sendQueue  email.Queue
	log        *slog.Logger
	stuckAfter time.Duration
	now        func() time.Time
}

// NewRequeueStuck creates the sweep task.
func NewRequeueStuck(logs stuckLister, sendQueue email.Queue, log *slog.Logger, stuckAfter time.Duration) *RequeueStuck {
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckAfter
	}
	return &RequeueStuck{
		logs:       logs,
		sendQueue:  sendQueue,
		log:        log,
		stuckAfter: stuckAfter,
		now:        time.Now,
	}
}

func (t *RequeueStuck) Name() string { return queue.TaskRequeueStuck }

func (t *RequeueStuck) Schedule() string { return "*/5 * * * *" }

// Handle lists stuck logs and re-enqueues each at normal priority. One
// failed enqueue does not stop the sweep; the log stays stuck and is
// retried next round.
func (t *RequeueStuck) Handle(ctx context.Context) error {
	ids, err := t.logs.ListStuckPending(ctx, t.now().Add(-t.stuckAfter))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	t.log.InfoContext(ctx, "requeueing stuck pending emails", slog.Int("count", len(ids)))

	for _, id := range ids {
		err := t.sendQueue.EnqueueSend(ctx, email.QueueJob{
			LogID:          id,
			PriorityWeight: email.PriorityNormal.Weight(),
			MaxAttempts:    3,
			Dedupe:         true,
		})
		if err != nil {
			t.log.ErrorContext(ctx, "failed to requeue stuck email",
				slog.String("log_id", id),
				slog.Any("error", err),
			)
		}
	}
	return nil
}
