package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time // zero means never
}

func (e memoryEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process cache. Expired entries are dropped lazily on
// access and swept periodically by a janitor goroutine.
type Memory[V any] struct {
	entries    map[string]memoryEntry[V]
	stop       chan struct{}
	defaultTTL time.Duration
	mu         sync.RWMutex
	closed     bool
}

// NewMemory creates an in-process cache with the given default TTL.
// Zero defaultTTL means entries without explicit TTL never expire.
func NewMemory[V any](defaultTTL time.Duration) *Memory[V] {
	m := &Memory[V]{
		entries:    make(map[string]memoryEntry[V]),
		stop:       make(chan struct{}),
		defaultTTL: defaultTTL,
	}
	go m.janitor()
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V

	m.mu.RLock()
	entry, ok := m.entries[key]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return zero, ErrClosed
	}
	if !ok || entry.expired(time.Now()) {
		return zero, ErrNotFound
	}
	return entry.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = memoryEntry[V]{value: value, expiresAt: expiresAt}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

// Close stops the janitor and releases the entry map.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.stop)
	m.entries = nil
	return nil
}

func (m *Memory[V]) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, entry := range m.entries {
				if entry.expired(now) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
