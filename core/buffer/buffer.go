// File: core/buffer/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core buffer type. One struct covers the heap, wrapped, dynamic, slice and
// duplicate variants: views share the backing array of their parent and keep
// their own cursors; only root dynamic buffers may reallocate storage.

package buffer

import (
	"encoding/binary"

	"github.com/momentics/hioload-pipeline/api"
)

type buf struct {
	arr    []byte // backing storage, shared with views
	off    int    // start of this buffer's window within arr
	length int    // window length == capacity
	r, w   int
	order  binary.ByteOrder
	grow   bool // dynamic buffers may reallocate on relative writes
	parent *buf // non-nil for slice/duplicate views
}

// Empty is the canonical zero-capacity buffer. Zero-length slices return it.
var Empty api.Buf = &buf{order: binary.BigEndian}

func (b *buf) Capacity() int { return b.length }
func (b *buf) Order() binary.ByteOrder { return b.order }
func (b *buf) ReaderIndex() int { return b.r }
func (b *buf) WriterIndex() int { return b.w }
func (b *buf) ReadableBytes() int { return b.w - b.r }
func (b *buf) WritableBytes() int { return b.length - b.w }
func (b *buf) Readable() bool { return b.w > b.r }
func (b *buf) Writable() bool { return b.length > b.w }

func (b *buf) SetReaderIndex(r int) {
	if r < 0 || r > b.w {
		panic(&api.BoundsError{Op: "SetReaderIndex", Index: r, Capacity: b.length})
	}
	b.r = r
}

func (b *buf) SetWriterIndex(w int) {
	if w < b.r || w > b.length {
		panic(&api.BoundsError{Op: "SetWriterIndex", Index: w, Capacity: b.length})
	}
	b.w = w
}

func (b *buf) SetIndex(r, w int) {
	if r < 0 || r > w || w > b.length {
		panic(&api.BoundsError{Op: "SetIndex", Index: r, Length: w - r, Capacity: b.length})
	}
	b.r, b.w = r, w
}

func (b *buf) Clear() { b.r, b.w = 0, 0 }

func (b *buf) Skip(n int) {
	if n < 0 || n > b.ReadableBytes() {
		panic(&api.BoundsError{Op: "Skip", Index: b.r, Length: n, Capacity: b.length})
	}
	b.r += n
}

func (b *buf) DiscardReadBytes() {
	if b.r == 0 {
		return
	}
	copy(b.arr[b.off:], b.arr[b.off+b.r:b.off+b.w])
	b.w -= b.r
	b.r = 0
}

func (b *buf) HasArray() bool { return true }
func (b *buf) Array() []byte { return b.arr }
func (b *buf) ArrayOffset() int { return b.off }

func (b *buf) Unwrap() api.Buf {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// checkIndex validates an absolute access of n bytes at i.
func (b *buf) checkIndex(op string, i, n int) {
	if i < 0 || n < 0 || i+n > b.length {
		panic(&api.BoundsError{Op: op, Index: i, Length: n, Capacity: b.length})
	}
}

// checkReadable validates a relative read of n bytes.
func (b *buf) checkReadable(op string, n int) {
	if n < 0 || b.r+n > b.w {
		panic(&api.BoundsError{Op: op, Index: b.r, Length: n, Capacity: b.length})
	}
}

// ensureWritable makes room for a relative write of n bytes, growing dynamic
// buffers by doubling until the write fits. Fixed buffers fail.
func (b *buf) ensureWritable(op string, n int) {
	if n < 0 {
		panic(&api.BoundsError{Op: op, Index: b.w, Length: n, Capacity: b.length})
	}
	if b.w+n <= b.length {
		return
	}
	if !b.grow {
		panic(&api.BoundsError{Op: op, Index: b.w, Length: n, Capacity: b.length})
	}
	newCap := b.length
	if newCap == 0 {
		newCap = minDynamicCapacity
	}
	for newCap < b.w+n {
		newCap <<= 1
	}
	next := make([]byte, newCap)
	copy(next, b.arr[b.off:b.off+b.length])
	b.arr = next
	b.off = 0
	b.length = newCap
}

// window returns the raw bytes of [i, i+n) without bounds checking.
func (b *buf) window(i, n int) []byte {
	return b.arr[b.off+i : b.off+i+n]
}

func (b *buf) Window(i, n int) []byte {
	b.checkIndex("Window", i, n)
	return b.window(i, n)
}
