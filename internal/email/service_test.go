package email

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/mailroom/pkg/logger"
	"github.com/hirelane/mailroom/pkg/mergefield"
)

func newTestService(logs LogStore, queue Queue) *Service {
	return NewService(logs, NewComposer(&MockTemplateStore{}), queue, logger.NewNope())
}

func TestService_SendEmail(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}

	var created *EmailLog
	logs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*EmailLog)
	}).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(logs, queue)
	id, err := svc.SendEmail(context.Background(), SendOptions{
		To:          "a@x.com",
		Subject:     "Hi {{candidate.firstName}}",
		HTMLContent: "<p>{{candidate.firstName}}</p>",
		MergeData:   &mergefield.Data{Candidate: &mergefield.Candidate{FirstName: "Ann"}},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, id)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, "Hi Ann", created.Subject)
	assert.Equal(t, "<p>Ann</p>", created.HTMLContent)

	require.Len(t, queue.jobs, 1)
	job := queue.jobs[0]
	assert.Equal(t, id, job.LogID)
	assert.Equal(t, 5, job.PriorityWeight, "default priority is normal")
	assert.Equal(t, 3, job.MaxAttempts)
	assert.Nil(t, job.RunAt, "no schedule means send now")
}

func TestService_SendEmail_PriorityMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		priority Priority
		want     int
	}{
		{"", 5},
		{PriorityNormal, 5},
		{PriorityHigh, 10},
		{PriorityLow, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			t.Parallel()

			logs := &MockLogStore{}
			queue := &MockQueue{}
			logs.On("Create", mock.Anything, mock.Anything).Return(nil)
			queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

			svc := newTestService(logs, queue)
			_, err := svc.SendEmail(context.Background(), SendOptions{
				To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>",
				Priority: tt.priority,
			})

			require.NoError(t, err)
			require.Len(t, queue.jobs, 1)
			assert.Equal(t, tt.want, queue.jobs[0].PriorityWeight)
		})
	}
}

func TestService_SendEmail_ScheduledFor(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(logs, queue)
	svc.now = func() time.Time { return now }

	scheduledFor := now.Add(2 * time.Hour)
	_, err := svc.SendEmail(context.Background(), SendOptions{
		To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>",
		ScheduledFor: &scheduledFor,
	})

	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	require.NotNil(t, queue.jobs[0].RunAt)
	assert.Equal(t, scheduledFor, *queue.jobs[0].RunAt)
}

func TestService_SendEmail_PastScheduleMeansNow(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(logs, queue)
	past := time.Now().Add(-time.Hour)
	_, err := svc.SendEmail(context.Background(), SendOptions{
		To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>",
		ScheduledFor: &past,
	})

	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Nil(t, queue.jobs[0].RunAt)
}

func TestService_SendEmail_PersistenceErrorPropagates(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	boom := errors.New("store down")
	logs.On("Create", mock.Anything, mock.Anything).Return(boom)

	svc := newTestService(logs, queue)
	_, err := svc.SendEmail(context.Background(), SendOptions{
		To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>",
	})

	assert.ErrorIs(t, err, boom)
	queue.AssertNotCalled(t, "EnqueueSend")
}

func TestService_SendEmail_EnqueueErrorStillReturnsID(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(errors.New("queue down"))

	svc := newTestService(logs, queue)
	id, err := svc.SendEmail(context.Background(), SendOptions{
		To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>",
	})

	// The log is persisted and recoverable by the requeue sweep.
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestService_SendBulkEmails(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}

	var batches [][]*EmailLog
	logs.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		batches = append(batches, args.Get(1).([]*EmailLog))
	}).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(logs, queue)
	svc.now = func() time.Time { return now }

	const n = 25
	emails := make([]SendOptions, n)
	for i := range emails {
		emails[i] = SendOptions{
			To:          fmt.Sprintf("user%02d@example.com", i),
			Subject:     "s",
			HTMLContent: "<p>b</p>",
		}
	}

	ids, err := svc.SendBulkEmails(context.Background(), BulkSendOptions{
		Emails:              emails,
		BatchSize:           10,
		DelayBetweenBatches: time.Minute,
	})

	require.NoError(t, err)

	// ceil(25/10) = 3 batches persisted together, one job per email.
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)
	require.Len(t, ids, n)
	require.Len(t, queue.jobs, n)

	// Ids preserve submission order.
	for i, id := range ids {
		assert.Equal(t, queue.jobs[i].LogID, id)
	}
	for batchIdx, batch := range batches {
		for i, log := range batch {
			assert.Equal(t, emails[batchIdx*10+i].To, log.To)
		}
	}

	// Job visibility is staggered per batch: 0m, 1m, 2m.
	assert.Nil(t, queue.jobs[0].RunAt)
	require.NotNil(t, queue.jobs[10].RunAt)
	assert.Equal(t, now.Add(time.Minute), *queue.jobs[10].RunAt)
	require.NotNil(t, queue.jobs[20].RunAt)
	assert.Equal(t, now.Add(2*time.Minute), *queue.jobs[20].RunAt)
}

func TestService_SendBulkEmails_DefaultBatchSize(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	var batches int
	logs.On("CreateBatch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		batches++
	}).Return(nil)
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(logs, queue)
	emails := make([]SendOptions, 15)
	for i := range emails {
		emails[i] = SendOptions{To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>"}
	}

	ids, err := svc.SendBulkEmails(context.Background(), BulkSendOptions{Emails: emails})

	require.NoError(t, err)
	assert.Len(t, ids, 15)
	assert.Equal(t, 2, batches, "default batch size is 10")
}

func TestService_SendBulkEmails_PersistenceErrorAborts(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	queue := &MockQueue{}
	boom := errors.New("store down")
	logs.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()
	logs.On("CreateBatch", mock.Anything, mock.Anything).Return(boom).Once()
	queue.On("EnqueueSend", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(logs, queue)
	emails := make([]SendOptions, 20)
	for i := range emails {
		emails[i] = SendOptions{To: "a@x.com", Subject: "s", HTMLContent: "<p>b</p>"}
	}

	ids, err := svc.SendBulkEmails(context.Background(), BulkSendOptions{
		Emails:    emails,
		BatchSize: 10,
	})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, ids, 10, "first batch ids are still reported")
}
