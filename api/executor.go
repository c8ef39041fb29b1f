// File: api/executor.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor contract for per-context event dispatch. Every context is pinned
// to exactly one Executor; that executor delivers the context's events from
// a single goroutine.

package api

// Executor runs tasks on a single dedicated goroutine.
type Executor interface {
	// Submit schedules task for execution. Returns ErrExecutorClosed after
	// Close.
	Submit(task func()) error

	// InLoop reports whether the calling goroutine is the executor's own
	// loop goroutine. Dispatch helpers use this to run events inline
	// instead of re-submitting.
	InLoop() bool

	// Close stops the loop after draining already-submitted tasks.
	Close()
}

// ExecutorGroup hands out executors for newly added contexts. The pipeline
// pins one child per group per channel so that all contexts added with the
// same group share an executor.
type ExecutorGroup interface {
	Next() Executor
}
