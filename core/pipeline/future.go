// File: core/pipeline/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"context"
	"sync"

	"github.com/momentics/hioload-pipeline/api"
)

// future is the single-completion handle returned by outbound operations.
type future struct {
	done chan struct{}

	mu        sync.Mutex
	completed bool
	err       error
	listeners []func(api.Future)
}

// NewFuture returns a pending future.
func NewFuture() api.Future {
	return &future{done: make(chan struct{})}
}

// NewSucceededFuture returns an already-completed successful future.
func NewSucceededFuture() api.Future {
	f := &future{done: make(chan struct{})}
	f.Succeed()
	return f
}

// NewFailedFuture returns an already-failed future.
func NewFailedFuture(cause error) api.Future {
	f := &future{done: make(chan struct{})}
	f.Fail(cause)
	return f
}

func (f *future) Done() <-chan struct{} { return f.done }

func (f *future) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *future) Succeeded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed && f.err == nil
}

func (f *future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *future) Succeed() bool { return f.complete(nil) }

func (f *future) Fail(cause error) bool { return f.complete(cause) }

func (f *future) complete(cause error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.err = cause
	listeners := f.listeners
	f.listeners = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(f)
	}
	return true
}

func (f *future) AddListener(fn func(api.Future)) {
	f.mu.Lock()
	if !f.completed {
		f.listeners = append(f.listeners, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn(f)
}

func (f *future) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return f.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
