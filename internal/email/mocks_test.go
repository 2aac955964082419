package email

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hirelane/mailroom/pkg/mailer"
)

// MockLogStore is a testify mock of LogStore.
type MockLogStore struct {
	mock.Mock
}

func (m *MockLogStore) Create(ctx context.Context, log *EmailLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockLogStore) CreateBatch(ctx context.Context, logs []*EmailLog) error {
	return m.Called(ctx, logs).Error(0)
}

func (m *MockLogStore) Get(ctx context.Context, id string) (*EmailLog, error) {
	args := m.Called(ctx, id)
	if log, ok := args.Get(0).(*EmailLog); ok {
		return log, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLogStore) Update(ctx context.Context, log *EmailLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockLogStore) List(ctx context.Context, filter LogFilter) ([]*EmailLog, int, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]*EmailLog)
	return logs, args.Int(1), args.Error(2)
}

func (m *MockLogStore) ListStuckPending(ctx context.Context, createdBefore time.Time) ([]string, error) {
	args := m.Called(ctx, createdBefore)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

// MockTemplateStore is a testify mock of TemplateStore.
type MockTemplateStore struct {
	mock.Mock
}

func (m *MockTemplateStore) Get(ctx context.Context, id string) (*Template, error) {
	args := m.Called(ctx, id)
	if tpl, ok := args.Get(0).(*Template); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateStore) List(ctx context.Context, filter TemplateFilter) ([]*Template, error) {
	args := m.Called(ctx, filter)
	tpls, _ := args.Get(0).([]*Template)
	return tpls, args.Error(1)
}

func (m *MockTemplateStore) Create(ctx context.Context, tpl *Template) error {
	return m.Called(ctx, tpl).Error(0)
}

// MockQueue is a testify mock of Queue.
type MockQueue struct {
	mock.Mock

	jobs []QueueJob
}

func (m *MockQueue) EnqueueSend(ctx context.Context, job QueueJob) error {
	m.jobs = append(m.jobs, job)
	return m.Called(ctx, job).Error(0)
}

// MockSender is a testify mock of mailer.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
