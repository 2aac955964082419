package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Tracker applies externally reported delivery status transitions to the
// delivery log and serves status reads.
type Tracker struct {
	logs  LogStore
	queue Queue
	log   *slog.Logger
	now   func() time.Time
}

// NewTracker creates a delivery status tracker.
func NewTracker(logs LogStore, queue Queue, log *slog.Logger) *Tracker {
	return &Tracker{
		logs:  logs,
		queue: queue,
		log:   log,
		now:   time.Now,
	}
}

// UpdateDeliveryStatus applies a provider-reported transition to the log,
// stamping the matching timestamp field. BOUNCED and FAILED additionally
// record the error message. Callbacks arriving before the dispatcher has
// committed the send outcome are rejected with ErrSendInFlight so the
// caller can retry them; other transitions not on the state machine are
// rejected with ErrInvalidState.
func (t *Tracker) UpdateDeliveryStatus(ctx context.Context, logID string, status Status, at *time.Time, errorMessage string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidState, status)
	}

	rec, err := t.logs.Get(ctx, logID)
	if err != nil {
		return err
	}

	if !CanTransition(rec.Status, status) {
		if earlyCallback(rec.Status, status) {
			return fmt.Errorf("%w: %s reported for %s while still %s",
				ErrSendInFlight, status, logID, rec.Status)
		}
		return fmt.Errorf("%w: cannot move %s from %s to %s",
			ErrInvalidState, logID, rec.Status, status)
	}

	ts := t.now()
	if at != nil {
		ts = *at
	}

	rec.Status = status
	switch status {
	case StatusDelivered:
		rec.DeliveredAt = &ts
	case StatusOpened:
		rec.OpenedAt = &ts
	case StatusClicked:
		rec.ClickedAt = &ts
	case StatusBounced:
		rec.BouncedAt = &ts
		rec.ErrorMessage = errorMessage
	case StatusFailed:
		rec.ErrorMessage = errorMessage
	case StatusSent:
		rec.SentAt = &ts
	}

	if err := t.logs.Update(ctx, rec); err != nil {
		return err
	}

	t.log.InfoContext(ctx, "delivery status updated",
		slog.String("log_id", logID),
		slog.String("status", string(status)),
	)
	return nil
}

// GetDeliveryStatus returns the lifecycle snapshot of one log.
func (t *Tracker) GetDeliveryStatus(ctx context.Context, logID string) (*DeliverySnapshot, error) {
	rec, err := t.logs.Get(ctx, logID)
	if err != nil {
		return nil, err
	}

	return &DeliverySnapshot{
		Status:       rec.Status,
		ErrorMessage: rec.ErrorMessage,
		SentAt:       rec.SentAt,
		DeliveredAt:  rec.DeliveredAt,
		OpenedAt:     rec.OpenedAt,
		ClickedAt:    rec.ClickedAt,
		BouncedAt:    rec.BouncedAt,
	}, nil
}

// RetryFailedEmail resets a FAILED log to PENDING and re-enqueues it at the
// highest priority weight, jumping ahead of normally queued sends. Any other
// state, or a missing log, fails with ErrInvalidState without mutating
// anything.
func (t *Tracker) RetryFailedEmail(ctx context.Context, logID string) error {
	rec, err := t.logs.Get(ctx, logID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			return fmt.Errorf("%w: log %s not found", ErrInvalidState, logID)
		}
		return err
	}

	if rec.Status != StatusFailed {
		return fmt.Errorf("%w: cannot retry log %s in status %s",
			ErrInvalidState, logID, rec.Status)
	}

	rec.Status = StatusPending
	rec.ErrorMessage = ""
	if err := t.logs.Update(ctx, rec); err != nil {
		return err
	}

	if err := t.queue.EnqueueSend(ctx, QueueJob{
		LogID:          logID,
		PriorityWeight: PriorityHigh.Weight(),
		MaxAttempts:    sendMaxAttempts,
	}); err != nil {
		t.log.ErrorContext(ctx, "failed to enqueue retry job, log left pending for sweep",
			slog.String("log_id", logID),
			slog.Any("error", err),
		)
	}

	t.log.InfoContext(ctx, "failed email queued for retry", slog.String("log_id", logID))
	return nil
}
