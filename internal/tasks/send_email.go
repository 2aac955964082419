// Package tasks holds the background task handlers run by the job manager.
package tasks

import (
	"context"

	"github.com/hirelane/mailroom/internal/queue"
)

// dispatcher is implemented by email.Dispatcher.
type dispatcher interface {
	Process(ctx context.Context, logID string) error
}

// SendEmail performs the transport call for one queued email log.
type SendEmail struct {
	dispatcher dispatcher
}

// NewSendEmail creates the send task.
func NewSendEmail(d dispatcher) *SendEmail {
	return &SendEmail{dispatcher: d}
}

func (t *SendEmail) Name() string { return queue.TaskSendEmail }

// Handle dispatches the referenced log. A returned error makes the queue
// retry the job with exponential backoff until its attempts run out.
func (t *SendEmail) Handle(ctx context.Context, payload queue.SendPayload) error {
	return t.dispatcher.Process(ctx, payload.LogID)
}
