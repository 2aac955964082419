package job

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultMaxWorkers   = 25
	defaultRetryBackoff = 2 * time.Second
)

// config holds job manager configuration.
type config struct {
	registry     *registry
	queues       map[string]int
	logger       *slog.Logger
	periodic     []periodicConfig
	maxWorkers   int
	retryBackoff time.Duration
}

func newConfig() *config {
	return &config{
		registry:     newRegistry(),
		queues:       make(map[string]int),
		maxWorkers:   defaultMaxWorkers,
		retryBackoff: defaultRetryBackoff,
	}
}

type periodicConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task handler using structural typing. The task must
// implement Name() and Handle(ctx, P); the payload type P is inferred from
// the Handle signature.
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), &taskAdapter[P, T]{task: task})
	}
}

// WithPeriodicTask registers a task that runs on a cron schedule.
// The task must implement Name(), Schedule() (5-field cron expression),
// and Handle(ctx).
func WithPeriodicTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.periodic = append(c.periodic, periodicConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with the given worker count.
// Tasks without an explicit queue use the default queue.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count for the default queue and any queue
// without an explicit count.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithRetryBackoff sets the base delay of the exponential retry backoff.
// A failed job's n-th retry waits base * 2^(n-1). Defaults to 2 seconds.
func WithRetryBackoff(base time.Duration) Option {
	return func(c *config) {
		if base > 0 {
			c.retryBackoff = base
		}
	}
}
