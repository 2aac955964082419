package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	LogID string `json:"log_id"`
}

type testTask struct {
	got  testPayload
	err  error
	runs int
}

func (t *testTask) Name() string { return "test:task" }

func (t *testTask) Handle(_ context.Context, p testPayload) error {
	t.runs++
	t.got = p
	return t.err
}

func TestTaskAdapter_DecodesPayload(t *testing.T) {
	t.Parallel()

	task := &testTask{}
	adapter := &taskAdapter[testPayload, *testTask]{task: task}

	err := adapter.Execute(context.Background(), json.RawMessage(`{"log_id":"abc"}`))

	require.NoError(t, err)
	assert.Equal(t, "abc", task.got.LogID)
	assert.Equal(t, 1, task.runs)
}

func TestTaskAdapter_EmptyPayload(t *testing.T) {
	t.Parallel()

	task := &testTask{}
	adapter := &taskAdapter[testPayload, *testTask]{task: task}

	require.NoError(t, adapter.Execute(context.Background(), nil))
	assert.Empty(t, task.got.LogID)
}

func TestTaskAdapter_InvalidPayload(t *testing.T) {
	t.Parallel()

	adapter := &taskAdapter[testPayload, *testTask]{task: &testTask{}}

	err := adapter.Execute(context.Background(), json.RawMessage(`not json`))

	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestTaskAdapter_PropagatesHandlerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	adapter := &taskAdapter[testPayload, *testTask]{task: &testTask{err: boom}}

	err := adapter.Execute(context.Background(), json.RawMessage(`{}`))

	assert.ErrorIs(t, err, boom)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := newRegistry()
	r.register("b", &periodicAdapter{handler: func(context.Context) error { return nil }})
	r.register("a", &periodicAdapter{handler: func(context.Context) error { return nil }})

	_, ok := r.get("a")
	assert.True(t, ok)
	_, ok = r.get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.names())
}
