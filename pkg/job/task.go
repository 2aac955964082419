package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// executor is the internal interface for type-erased task execution,
// allowing tasks with different payload types to share one registry.
type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	executors map[string]executor
	mu        sync.RWMutex
}

func newRegistry() *registry {
	return &registry{executors: make(map[string]executor)}
}

func (r *registry) register(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = e
}

func (r *registry) get(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[name]
	return e, ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.executors))
}

// taskAdapter wraps a typed task handler for type-erased storage.
type taskAdapter[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (a *taskAdapter[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return a.task.Handle(ctx, payload)
}

type periodicAdapter struct {
	handler func(context.Context) error
}

func (a *periodicAdapter) Execute(ctx context.Context, _ json.RawMessage) error {
	return a.handler(ctx)
}
