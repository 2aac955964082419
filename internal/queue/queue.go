// Package queue bridges the email pipeline to the durable job queue. It
// owns the task names, queue names, and wire payloads shared between the
// enqueue side (internal/email) and the worker side (internal/tasks).
package queue

import (
	"context"
	"time"

	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/pkg/job"
)

const (
	// TaskSendEmail dispatches one persisted email log.
	TaskSendEmail = "email:send"
	// TaskRequeueStuck is the periodic sweep re-enqueueing orphaned
	// PENDING logs.
	TaskRequeueStuck = "email:requeue_stuck"

	// QueueEmail is the named queue all email jobs run on.
	QueueEmail = "email"
)

// dedupeWindow bounds how long a sweep-enqueued job suppresses duplicates
// for the same log.
const dedupeWindow = 15 * time.Minute

// SendPayload is the wire payload of a TaskSendEmail job.
type SendPayload struct {
	LogID string `json:"log_id"`
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// RiverQueue implements email.Queue on top of the River-backed job package.
type RiverQueue struct {
	enqueuer jobEnqueuer
}

// New wraps a job enqueuer (either the full manager or an insert-only
// enqueuer) as the pipeline's send queue.
func New(enqueuer jobEnqueuer) *RiverQueue {
	return &RiverQueue{enqueuer: enqueuer}
}

// EnqueueSend inserts one send job for the given log.
func (q *RiverQueue) EnqueueSend(ctx context.Context, j email.QueueJob) error {
	opts := []job.EnqueueOption{
		job.InQueue(QueueEmail),
		job.Priority(priorityFor(j.PriorityWeight)),
	}
	if j.MaxAttempts > 0 {
		opts = append(opts, job.MaxAttempts(j.MaxAttempts))
	}
	if j.RunAt != nil {
		opts = append(opts, job.ScheduledAt(*j.RunAt))
	}
	if j.Dedupe {
		opts = append(opts, job.Unique("send:"+j.LogID, dedupeWindow))
	}

	return q.enqueuer.Enqueue(ctx, TaskSendEmail, SendPayload{LogID: j.LogID}, opts...)
}

// priorityFor maps domain priority weights (higher runs first) onto River's
// 1..4 scale (lower runs first). High-priority sends preempt the default
// band, low-priority sends trail it.
func priorityFor(weight int) int {
	switch {
	case weight >= email.PriorityHigh.Weight():
		return 1
	case weight >= email.PriorityNormal.Weight():
		return 2
	default:
		return 4
	}
}
