// File: api/errors.go
// Package api defines the contracts of the hioload-pipeline core.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error kinds shared by the buffer substrate, the pipeline and the
// codec layer.

package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Common errors used across the library.
var (
	// ErrNoBuffer is carried by the panic raised when a context is asked for
	// a buffer kind its handler never declared.
	ErrNoBuffer = errors.New("context declares no such buffer")

	// ErrClosedChannel reports an outbound operation against a channel whose
	// transport has already been closed.
	ErrClosedChannel = errors.New("channel is closed")

	// ErrPipeline is the base of fatal registration failures, e.g. a handler
	// that failed to create its buffer holder.
	ErrPipeline = errors.New("pipeline error")

	// ErrDuplicateName reports a pipeline insertion under an existing name.
	ErrDuplicateName = errors.New("duplicate handler name")

	// ErrNoSuchContext reports a lookup of a name absent from the pipeline.
	ErrNoSuchContext = errors.New("no such handler context")

	// ErrExecutorClosed reports a task submission to a closed executor.
	ErrExecutorClosed = errors.New("executor is closed")
)

// BoundsError reports a buffer access outside the legal index range.
// Buffer accessors panic with a *BoundsError; the pipeline dispatcher
// recovers such panics and routes them through FireExceptionCaught.
type BoundsError struct {
	Op       string // accessor that failed, e.g. "GetUint32"
	Index    int
	Length   int
	Capacity int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("buffer: %s out of bounds: index=%d length=%d capacity=%d",
		e.Op, e.Index, e.Length, e.Capacity)
}

// IsBounds reports whether err carries a *BoundsError anywhere in its chain.
func IsBounds(err error) bool {
	var be *BoundsError
	return errors.As(err, &be)
}
