package email

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hirelane/mailroom/pkg/mailer"
)

// logIDTag is the provider tag carrying our log id, echoed back on
// delivery webhooks for correlation.
const logIDTag = "log_id"

// Dispatcher consumes send jobs: it loads the log, performs the transport
// call, and records the outcome.
type Dispatcher struct {
	logs   LogStore
	sender mailer.Sender
	log    *slog.Logger
	now    func() time.Time
}

// NewDispatcher creates a dispatcher sending through the given transport.
func NewDispatcher(logs LogStore, sender mailer.Sender, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logs:   logs,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// Process performs the transport call for one queued send.
//
// A vanished or already-sent log is a logged no-op, not an error: the queue
// delivers at-least-once and this guard keeps processing at-most-once.
// On success the log moves to SENT with the provider message id and sentAt
// stamped. On transport failure the log moves to FAILED with the error
// message recorded, and the error is returned so the queue's retry/backoff
// re-attempts the send. A FAILED log is therefore still dispatchable here:
// the user-visible status may read FAILED while a retry is in flight, and a
// retry that succeeds flips the log straight to SENT.
func (d *Dispatcher) Process(ctx context.Context, logID string) error {
	rec, err := d.logs.Get(ctx, logID)
	if err != nil {
		if errors.Is(err, ErrLogNotFound) {
			d.log.WarnContext(ctx, "email log vanished before dispatch, skipping",
				slog.String("log_id", logID))
			return nil
		}
		return err
	}

	if rec.Status != StatusPending && rec.Status != StatusFailed {
		d.log.InfoContext(ctx, "skipping dispatch of already-processed email log",
			slog.String("log_id", logID),
			slog.String("status", string(rec.Status)),
		)
		return nil
	}

	messageID, sendErr := d.sender.Send(ctx, &mailer.Email{
		To:      []string{rec.To},
		CC:      rec.CC,
		BCC:     rec.BCC,
		Subject: rec.Subject,
		HTML:    rec.HTMLContent,
		Text:    rec.TextContent,
		Tags:    mailer.Tags{logIDTag: rec.ID},
	})
	if sendErr != nil {
		rec.Status = StatusFailed
		rec.ErrorMessage = sendErr.Error()
		if updErr := d.logs.Update(ctx, rec); updErr != nil {
			sendErr = errors.Join(sendErr, updErr)
		}
		return errors.Join(ErrSendFailed, sendErr)
	}

	now := d.now()
	rec.Status = StatusSent
	rec.ExternalID = messageID
	rec.SentAt = &now
	if err := d.logs.Update(ctx, rec); err != nil {
		return err
	}

	d.log.InfoContext(ctx, "email sent",
		slog.String("log_id", rec.ID),
		slog.String("external_id", messageID),
	)
	return nil
}
