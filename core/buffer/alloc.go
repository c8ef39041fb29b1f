// File: core/buffer/alloc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pluggable buffer factory. Stages and transports allocate through an
// Allocator so byte order and instrumentation are chosen in one place.

package buffer

import (
	"encoding/binary"

	"github.com/momentics/hioload-pipeline/api"
)

// minDynamicCapacity is the first capacity a zero-sized dynamic buffer grows
// to.
const minDynamicCapacity = 64

// defaultDynamicEstimate sizes dynamic buffers allocated without a hint.
const defaultDynamicEstimate = 256

// Allocator builds buffers with a fixed byte order and optional allocation
// hook for instrumentation.
type Allocator struct {
	Order   binary.ByteOrder
	onAlloc func(size int)
}

// Default allocates big-endian heap buffers, matching network byte order.
var Default = Allocator{Order: binary.BigEndian}

// WithAllocHook returns a copy of a that invokes fn with the capacity of
// every buffer it allocates.
func (a Allocator) WithAllocHook(fn func(size int)) Allocator {
	a.onAlloc = fn
	return a
}

// New returns a fixed-capacity heap buffer with zero cursors.
func (a Allocator) New(capacity int) api.Buf {
	if capacity < 0 {
		panic(&api.BoundsError{Op: "New", Length: capacity})
	}
	a.note(capacity)
	return &buf{arr: make([]byte, capacity), length: capacity, order: a.order()}
}

// Dynamic returns a growable buffer pre-sized to estimate bytes.
func (a Allocator) Dynamic(estimate int) api.Buf {
	if estimate <= 0 {
		estimate = defaultDynamicEstimate
	}
	a.note(estimate)
	return &buf{arr: make([]byte, estimate), length: estimate, order: a.order(), grow: true}
}

// Wrap views externally-owned memory. The buffer is fully readable and
// cannot grow; writes past its capacity fail.
func (a Allocator) Wrap(p []byte) api.Buf {
	return &buf{arr: p, length: len(p), w: len(p), order: a.order()}
}

func (a Allocator) order() binary.ByteOrder {
	if a.Order == nil {
		return binary.BigEndian
	}
	return a.Order
}

func (a Allocator) note(size int) {
	if a.onAlloc != nil {
		a.onAlloc(size)
	}
}

// New allocates a fixed heap buffer from the default allocator.
func New(capacity int) api.Buf { return Default.New(capacity) }

// Dynamic allocates a growable buffer from the default allocator.
func Dynamic(estimate int) api.Buf { return Default.Dynamic(estimate) }

// Wrap views p through the default allocator.
func Wrap(p []byte) api.Buf { return Default.Wrap(p) }
