package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/mailroom/pkg/logger"
	"github.com/hirelane/mailroom/pkg/mailer"
)

func TestDispatcher_Process_Success(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	sender := &MockSender{}

	rec := &EmailLog{
		ID:          "log-1",
		To:          "ann@example.com",
		CC:          []string{"cc@example.com"},
		Subject:     "Interview invite",
		HTMLContent: "<p>Hi</p>",
		TextContent: "Hi",
		Status:      StatusPending,
	}
	logs.On("Get", mock.Anything, "log-1").Return(rec, nil)
	logs.On("Update", mock.Anything, rec).Return(nil)

	var sent *mailer.Email
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*mailer.Email)
	}).Return("msg-abc", nil)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d := NewDispatcher(logs, sender, logger.NewNope())
	d.now = func() time.Time { return now }

	require.NoError(t, d.Process(context.Background(), "log-1"))

	assert.Equal(t, StatusSent, rec.Status)
	assert.Equal(t, "msg-abc", rec.ExternalID)
	require.NotNil(t, rec.SentAt)
	assert.Equal(t, now, *rec.SentAt)

	require.NotNil(t, sent)
	assert.Equal(t, []string{"ann@example.com"}, sent.To)
	assert.Equal(t, []string{"cc@example.com"}, sent.CC)
	assert.Equal(t, "log-1", sent.Tags[logIDTag], "provider tag must carry the log id for webhook correlation")
}

func TestDispatcher_Process_TransportFailure(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	sender := &MockSender{}

	rec := &EmailLog{ID: "log-1", To: "ann@example.com", Subject: "s", HTMLContent: "<p>b</p>", Status: StatusPending}
	logs.On("Get", mock.Anything, "log-1").Return(rec, nil)
	logs.On("Update", mock.Anything, rec).Return(nil)

	sendErr := errors.New("provider rejected the message")
	sender.On("Send", mock.Anything, mock.Anything).Return("", sendErr)

	d := NewDispatcher(logs, sender, logger.NewNope())
	err := d.Process(context.Background(), "log-1")

	// The error surfaces so the queue retries, and the failure is recorded.
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, sendErr.Error(), rec.ErrorMessage)
	assert.Nil(t, rec.SentAt)
}

func TestDispatcher_Process_AlreadySentNoOp(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusSent, StatusDelivered, StatusOpened, StatusClicked, StatusBounced} {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			logs := &MockLogStore{}
			sender := &MockSender{}
			logs.On("Get", mock.Anything, "log-1").Return(&EmailLog{ID: "log-1", Status: status}, nil)

			d := NewDispatcher(logs, sender, logger.NewNope())
			require.NoError(t, d.Process(context.Background(), "log-1"))

			sender.AssertNotCalled(t, "Send")
			logs.AssertNotCalled(t, "Update")
		})
	}
}

func TestDispatcher_Process_FailedStillDispatchable(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	sender := &MockSender{}

	// The queue retries a job whose previous attempt already marked the log
	// FAILED; a successful retry flips the log straight to SENT.
	rec := &EmailLog{ID: "log-1", To: "ann@example.com", Subject: "s", HTMLContent: "<p>b</p>",
		Status: StatusFailed, ErrorMessage: "temporary outage"}
	logs.On("Get", mock.Anything, "log-1").Return(rec, nil)
	logs.On("Update", mock.Anything, rec).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything).Return("msg-retry", nil)

	d := NewDispatcher(logs, sender, logger.NewNope())
	require.NoError(t, d.Process(context.Background(), "log-1"))

	assert.Equal(t, StatusSent, rec.Status)
	assert.Equal(t, "msg-retry", rec.ExternalID)
}

func TestDispatcher_Process_VanishedLogNoOp(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	sender := &MockSender{}
	logs.On("Get", mock.Anything, "gone").Return(nil, ErrLogNotFound)

	d := NewDispatcher(logs, sender, logger.NewNope())
	require.NoError(t, d.Process(context.Background(), "gone"))

	sender.AssertNotCalled(t, "Send")
}

func TestDispatcher_Process_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	logs := &MockLogStore{}
	sender := &MockSender{}
	boom := errors.New("connection reset")
	logs.On("Get", mock.Anything, "log-1").Return(nil, boom)

	d := NewDispatcher(logs, sender, logger.NewNope())
	err := d.Process(context.Background(), "log-1")

	assert.ErrorIs(t, err, boom)
	sender.AssertNotCalled(t, "Send")
}
