package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/mailroom/pkg/cache"
)

func TestMemory_SetGet(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", "v", -1))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemory_Miss(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	t.Cleanup(func() { _ = m.Close() })

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[int](0)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", 1, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", "v", -1))
	require.NoError(t, m.Delete(ctx, "k"))

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Set(context.Background(), "k", "v", 0), cache.ErrClosed)
	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, cache.ErrClosed)
}

func TestGetOrSet(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	calls := 0
	load := func(context.Context) (string, time.Duration, error) {
		calls++
		return "loaded", -1, nil
	}

	got, err := cache.GetOrSet(ctx, m, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, calls)

	// Second call is served from the cache.
	got, err = cache.GetOrSet(ctx, m, "k", load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", got)
	assert.Equal(t, 1, calls)
}

func TestGetOrSet_FlightsScopedByType(t *testing.T) {
	t.Parallel()

	strs := cache.NewMemory[string](0)
	ints := cache.NewMemory[int](0)
	t.Cleanup(func() {
		_ = strs.Close()
		_ = ints.Close()
	})

	ctx := context.Background()
	loading := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := cache.GetOrSet(ctx, strs, "shared", func(context.Context) (string, time.Duration, error) {
			close(loading)
			<-release
			return "s", -1, nil
		})
		done <- err
	}()
	<-loading

	// A cache of a different value type must not join the blocked flight
	// above even though the key matches; joining would block here and then
	// panic asserting the string result to int.
	got, err := cache.GetOrSet(ctx, ints, "shared", func(context.Context) (int, time.Duration, error) {
		return 42, -1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	close(release)
	require.NoError(t, <-done)
}

func TestGetOrSet_LoaderError(t *testing.T) {
	t.Parallel()

	m := cache.NewMemory[string](0)
	t.Cleanup(func() { _ = m.Close() })

	boom := errors.New("boom")
	_, err := cache.GetOrSet(context.Background(), m, "bad-key", func(context.Context) (string, time.Duration, error) {
		return "", 0, boom
	})

	assert.ErrorIs(t, err, boom)
}
