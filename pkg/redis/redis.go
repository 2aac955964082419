// Package redis opens Redis connections with retry and sane pool defaults.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyConnectionURL = errors.New("redis: empty connection url")
	ErrParseURL           = errors.New("redis: failed to parse connection url")
	ErrConnectionFailed   = errors.New("redis: connection failed")
)

const (
	defaultRetryAttempts = 3
	defaultRetryInterval = 5 * time.Second
)

// Open creates a Redis client. Supports redis:// and rediss:// (TLS) URLs.
// The connection is verified with a ping and retried with linear backoff.
func Open(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrParseURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrParseURL, err)
	}

	for i := range defaultRetryAttempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * defaultRetryInterval):
		}
	}

	return nil, ErrConnectionFailed
}
