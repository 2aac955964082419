// Package job provides durable background job processing using River
// (Postgres-native queue).
//
// It wraps River with a small, type-safe API: tasks are structs with Name()
// and Handle() methods registered via structural typing, jobs are enqueued by
// task name with per-job priority, schedule, and retry budget, and failed
// jobs are retried with exponential backoff owned by the queue.
//
// # Task definition
//
//	type SendEmail struct {
//	    dispatcher *email.Dispatcher
//	}
//
//	func (t *SendEmail) Name() string { return "email:send" }
//
//	func (t *SendEmail) Handle(ctx context.Context, p queue.SendPayload) error {
//	    return t.dispatcher.Process(ctx, p.LogID)
//	}
//
// # Enqueueing
//
//	err := mgr.Enqueue(ctx, "email:send", queue.SendPayload{LogID: id},
//	    job.Priority(1),
//	    job.MaxAttempts(3),
//	    job.ScheduledAt(sendAt),
//	)
//
// Scheduled jobs stay invisible to workers until their run time; the queue
// owns the timer semantics, no polling loop is required.
//
// # Periodic tasks
//
// Tasks implementing Schedule() (a 5-field cron expression) run periodically:
//
//	func (t *RequeueStuck) Schedule() string { return "*/5 * * * *" }
//
// # Retry policy
//
// A failed job is re-attempted up to its MaxAttempts budget with exponential
// backoff starting at the configured base delay and doubling per attempt.
//
// # Migrations
//
// River requires its own tables (river_job, river_leader, river_queue).
// Run River's migrations before starting the manager:
// https://riverqueue.com/docs/migrations
package job
