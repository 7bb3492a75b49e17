// Package oneshot guards a lazily initialised value behind an explicit
// NotStarted -> Loading -> Ready|Failed state machine. Callers that arrive
// while a load is in flight are queued and released together when it ends.
package oneshot

import (
	"context"
	"sync"
)

type State int

const (
	NotStarted State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type LoadFunc[T any] func(ctx context.Context) (T, error)

type attempt[T any] struct {
	done chan struct{}
	val  T
	err  error
}

type Value[T any] struct {
	base context.Context
	load LoadFunc[T]

	mu      sync.Mutex
	state   State
	current *attempt[T]
}

// New returns a Value that runs load under base when first requested.
// base outlives individual callers: a waiter giving up never cancels the load.
func New[T any](base context.Context, load LoadFunc[T]) *Value[T] {
	return &Value[T]{
		base:  base,
		load:  load,
		state: NotStarted,
	}
}

// Start begins loading in the background if no load is running or finished.
func (v *Value[T]) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.startLocked()
}

// Get returns the loaded value, starting a load if needed. A Get after a
// failed load starts a new attempt.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.mu.Lock()
	v.startLocked()
	a := v.current
	v.mu.Unlock()

	select {
	case <-a.done:
		return a.val, a.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

func (v *Value[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}

func (v *Value[T]) startLocked() {
	if v.state == Loading || v.state == Ready {
		return
	}

	a := &attempt[T]{done: make(chan struct{})}
	v.state = Loading
	v.current = a

	go func() {
		a.val, a.err = v.load(v.base)

		v.mu.Lock()
		if a.err != nil {
			v.state = Failed
		} else {
			v.state = Ready
		}
		v.mu.Unlock()

		close(a.done)
	}()
}
