// Package config aggregates all runtime configuration, parsed from
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/hirelane/mailroom/pkg/db"
	"github.com/hirelane/mailroom/pkg/logger"
	"github.com/hirelane/mailroom/pkg/mailer/resend"
)

// Config is the full service configuration.
type Config struct {
	DB     db.Config
	Resend resend.Config
	Sentry logger.SentryConfig

	// RedisURL backs the template read cache. Empty falls back to the
	// in-process cache, so single-instance deployments need no Redis.
	RedisURL string `env:"REDIS_URL"`

	// HTTPAddr is the webhook server listen address.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Queue worker settings.
	QueueWorkers int           `env:"QUEUE_WORKERS" envDefault:"10"`
	RetryBackoff time.Duration `env:"QUEUE_RETRY_BACKOFF" envDefault:"2s"`

	// StuckAfter is how long a PENDING log may sit without progress before
	// the periodic sweep re-enqueues it.
	StuckAfter time.Duration `env:"SWEEP_STUCK_AFTER" envDefault:"10m"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
