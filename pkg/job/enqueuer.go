package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/hirelane/mailroom/pkg/logger"
)

// Enqueuer provides job enqueueing without worker processing. Use it in
// processes that only dispatch work consumed by separate workers.
type Enqueuer struct {
	client *river.Client[pgx.Tx]
}

// NewEnqueuer creates an insert-only client (no workers, no queues).
func NewEnqueuer(pool *pgxpool.Pool) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger.NewNope(),
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}

	return &Enqueuer{client: client}, nil
}

// Enqueue adds a job to the queue for processing by workers.
// Task name validation happens on the worker side.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	if _, err := e.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

// EnqueueTx adds a job within a transaction; the job only becomes visible
// after the transaction commits.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}

	if _, err := e.client.InsertTx(ctx, tx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue tx %s: %w", name, err)
	}
	return nil
}

// buildJobArgs translates the task name, payload, and options into River
// insert arguments. Shared by Enqueuer and Manager.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload for %s: %w", name, err)
		}
	}

	args := &taskArgs{
		TaskName: name,
		Payload:  raw,
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{}
	if cfg.queue != "" {
		insertOpts.Queue = cfg.queue
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}
	if cfg.maxAttempts > 0 {
		insertOpts.MaxAttempts = cfg.maxAttempts
	}
	if cfg.priority > 0 {
		insertOpts.Priority = cfg.priority
	}
	if cfg.uniqueFor > 0 {
		// ByArgs hashes only the river-tagged UniqueKey field, so
		// uniqueness is per key. Without ByArgs, River dedupes per job
		// kind, and every task here shares the one taskArgs kind.
		insertOpts.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: cfg.uniqueFor}
		args.UniqueKey = cfg.uniqueKey
	}

	return args, insertOpts, nil
}
