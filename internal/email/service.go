package email

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/mailroom/pkg/mergefield"
)

// sendMaxAttempts is the fixed retry budget per send job: the first
// transport attempt plus two retries, backed off by the queue.
const sendMaxAttempts = 3

const defaultBatchSize = 10

// QueueJob is the unit of scheduled work handed to the send queue:
// a reference to one EmailLog plus its scheduling parameters.
type QueueJob struct {
	LogID          string
	PriorityWeight int
	MaxAttempts    int
	RunAt          *time.Time // nil means send now

	// Dedupe makes the enqueue idempotent per log for a window. Set by
	// the requeue sweep so it cannot double-book a live job.
	Dedupe bool
}

// Queue is the send queue boundary. The production implementation enqueues
// River jobs (see internal/queue).
type Queue interface {
	EnqueueSend(ctx context.Context, job QueueJob) error
}

// Service is the submission surface of the pipeline: it persists delivery
// logs and schedules their dispatch.
type Service struct {
	logs     LogStore
	composer *Composer
	queue    Queue
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates the submission service.
func NewService(logs LogStore, composer *Composer, queue Queue, log *slog.Logger) *Service {
	return &Service{
		logs:     logs,
		composer: composer,
		queue:    queue,
		log:      log,
		now:      time.Now,
	}
}

// SendEmail composes the message, persists a PENDING EmailLog, and enqueues
// exactly one send job for it. The returned id identifies the log.
//
// A future ScheduledFor delays job visibility until that time; a past or
// absent one means "send now". If the enqueue itself fails the log is kept
// (still PENDING) and the id is returned: the periodic requeue sweep picks
// the log up, so the one-job-per-log invariant is restored rather than the
// whole submission aborted.
func (s *Service) SendEmail(ctx context.Context, opts SendOptions) (string, error) {
	composed, err := s.compose(ctx, opts)
	if err != nil {
		return "", err
	}

	log := s.newLog(composed, opts)
	if err := s.logs.Create(ctx, log); err != nil {
		return "", err
	}

	job := QueueJob{
		LogID:          log.ID,
		PriorityWeight: opts.Priority.Weight(),
		MaxAttempts:    sendMaxAttempts,
	}
	if opts.ScheduledFor != nil && opts.ScheduledFor.After(s.now()) {
		job.RunAt = opts.ScheduledFor
	}

	if err := s.queue.EnqueueSend(ctx, job); err != nil {
		s.log.ErrorContext(ctx, "failed to enqueue send job, log left pending for sweep",
			slog.String("log_id", log.ID),
			slog.Any("error", err),
		)
	}

	return log.ID, nil
}

// SendBulkEmails submits many emails at once. The input is partitioned into
// chunks of BatchSize; each chunk's logs are persisted together and its jobs
// are delayed by DelayBetweenBatches times the batch index to throttle
// outbound throughput. Returned ids preserve submission order.
//
// A persistence failure aborts the remaining batches and returns the ids
// persisted so far along with the error. Enqueue failures are logged per
// email and recovered by the requeue sweep.
func (s *Service) SendBulkEmails(ctx context.Context, opts BulkSendOptions) ([]string, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	ids := make([]string, 0, len(opts.Emails))
	batchIndex := 0

	for chunk := range slices.Chunk(opts.Emails, batchSize) {
		logs := make([]*EmailLog, 0, len(chunk))
		jobs := make([]QueueJob, 0, len(chunk))
		stagger := time.Duration(batchIndex) * opts.DelayBetweenBatches

		for _, emailOpts := range chunk {
			composed, err := s.compose(ctx, emailOpts)
			if err != nil {
				return ids, err
			}

			log := s.newLog(composed, emailOpts)
			logs = append(logs, log)

			job := QueueJob{
				LogID:          log.ID,
				PriorityWeight: emailOpts.Priority.Weight(),
				MaxAttempts:    sendMaxAttempts,
			}
			if stagger > 0 {
				runAt := s.now().Add(stagger)
				job.RunAt = &runAt
			}
			jobs = append(jobs, job)
		}

		if err := s.logs.CreateBatch(ctx, logs); err != nil {
			return ids, err
		}
		for _, log := range logs {
			ids = append(ids, log.ID)
		}

		for _, job := range jobs {
			if err := s.queue.EnqueueSend(ctx, job); err != nil {
				s.log.ErrorContext(ctx, "failed to enqueue bulk send job, log left pending for sweep",
					slog.String("log_id", job.LogID),
					slog.Int("batch", batchIndex),
					slog.Any("error", err),
				)
			}
		}

		batchIndex++
	}

	return ids, nil
}

func (s *Service) compose(ctx context.Context, opts SendOptions) (*ComposedEmail, error) {
	if opts.TemplateID != "" {
		var data mergefield.Data
		if opts.MergeData != nil {
			data = *opts.MergeData
		}
		return s.composer.ComposeFromTemplate(ctx, opts.TemplateID, data, opts.To)
	}
	return s.composer.ComposeCustom(opts.To, opts.Subject, opts.HTMLContent, opts.TextContent, opts.MergeData)
}

func (s *Service) newLog(composed *ComposedEmail, opts SendOptions) *EmailLog {
	return &EmailLog{
		ID:            uuid.NewString(),
		To:            composed.To,
		CC:            opts.CC,
		BCC:           opts.BCC,
		Subject:       composed.Subject,
		HTMLContent:   composed.HTMLContent,
		TextContent:   composed.TextContent,
		Status:        StatusPending,
		TemplateID:    composed.TemplateID,
		CandidateID:   opts.CandidateID,
		ApplicationID: opts.ApplicationID,
		SubmittedBy:   opts.SubmittedBy,
		Metadata:      opts.Metadata,
		ScheduledFor:  opts.ScheduledFor,
		CreatedAt:     s.now(),
	}
}
