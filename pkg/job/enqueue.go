package job

import "time"

// enqueueConfig holds per-job options.
type enqueueConfig struct {
	scheduledAt *time.Time
	queue       string
	uniqueKey   string
	uniqueFor   time.Duration
	maxAttempts int
	priority    int
}

// EnqueueOption configures a single enqueued job.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until a specific time. Workers will not see
// the job before then.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = &t
	}
}

// ScheduledIn delays the job by a duration from now.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		t := time.Now().Add(d)
		c.scheduledAt = &t
	}
}

// MaxAttempts caps the total number of attempts (first run plus retries).
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Priority orders the job within its queue. River priorities run 1 (first)
// through 4 (last); values outside that range are clamped.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		c.priority = min(max(p, 1), 4)
	}
}

// Unique skips the insert if a job with the same key already exists within
// the window. Used to make re-enqueue sweeps idempotent.
func Unique(key string, window time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		if key != "" && window > 0 {
			c.uniqueKey = key
			c.uniqueFor = window
		}
	}
}
