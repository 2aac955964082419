package job

import "errors"

var (
	// ErrPoolRequired is returned when a manager or enqueuer is created
	// without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrUnknownTask is returned when a job references a task name that
	// has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a job payload cannot be
	// unmarshaled into the task's payload type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned when starting a manager that is
	// already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when stopping a manager that is not running.
	ErrNotStarted = errors.New("job: not started")
)
