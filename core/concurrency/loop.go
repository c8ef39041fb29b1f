// File: core/concurrency/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop is the single-goroutine executor contexts are pinned to. Events for
// one context are only ever delivered from its loop goroutine, which is what
// makes handler callbacks totally ordered per context.

package concurrency

import (
	"runtime"
	"sync/atomic"

	"github.com/momentics/hioload-pipeline/api"
)

const defaultTaskQueueCapacity = 4096

// Loop runs submitted tasks on one dedicated goroutine in FIFO order.
type Loop struct {
	tasks   *Queue[func()]
	wake    chan struct{}
	closeCh chan struct{}
	done    chan struct{}
	closed  atomic.Bool
	gid     atomic.Uint64
	pinCPU  int
}

// LoopOption configures a Loop before its goroutine starts.
type LoopOption func(*Loop)

// WithPinnedCPU locks the loop's OS thread to the given CPU (Linux; no-op
// elsewhere). Negative means unpinned.
func WithPinnedCPU(cpu int) LoopOption {
	return func(l *Loop) { l.pinCPU = cpu }
}

// WithTaskQueueCapacity bounds the task intake queue.
func WithTaskQueueCapacity(n int) LoopOption {
	return func(l *Loop) { l.tasks = NewQueue[func()](n) }
}

// NewLoop starts a loop executor.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		tasks:   NewQueue[func()](defaultTaskQueueCapacity),
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
		pinCPU:  -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Submit enqueues task for execution on the loop goroutine. When the intake
// queue is momentarily full the submitter yields and retries, providing
// backpressure instead of dropping events.
func (l *Loop) Submit(task func()) error {
	for {
		if l.closed.Load() {
			return api.ErrExecutorClosed
		}
		if l.tasks.Enqueue(task) {
			select {
			case l.wake <- struct{}{}:
			default:
			}
			return nil
		}
		runtime.Gosched()
	}
}

// InLoop reports whether the caller is the loop goroutine.
func (l *Loop) InLoop() bool {
	return curGoroutineID() == l.gid.Load()
}

// Close stops the loop after draining already-submitted tasks.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.closeCh)
		<-l.done
	}
}

func (l *Loop) run() {
	defer close(l.done)
	l.gid.Store(curGoroutineID())
	if l.pinCPU >= 0 {
		pinThread(l.pinCPU)
	}
	for {
		if task, ok := l.tasks.Dequeue(); ok {
			task()
			continue
		}
		select {
		case <-l.wake:
		case <-l.closeCh:
			// Drain what was accepted before the close flag settled.
			for {
				task, ok := l.tasks.Dequeue()
				if !ok {
					return
				}
				task()
			}
		}
	}
}
