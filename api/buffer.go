// File: api/buffer.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Indexed byte buffer contract. A Buf owns (or views) a run of bytes and two
// cursors, readerIndex and writerIndex, with the invariant
//
//	0 <= readerIndex <= writerIndex <= capacity
//
// Absolute accessors (Get*/Set*) never move the cursors; relative accessors
// (Read*/Write*) advance them. Accessors that would violate the invariant
// panic with a *BoundsError. Implementations live in core/buffer.

package api

import (
	"encoding/binary"
	"io"
)

// Buf is the mutable, index-based byte container shared by all pipeline
// stages. Multi-byte accessors respect Order.
type Buf interface {
	// Capacity returns the total number of addressable bytes. Dynamic
	// buffers may grow their capacity on relative writes.
	Capacity() int

	// Order returns the byte order applied by multi-byte accessors.
	Order() binary.ByteOrder

	ReaderIndex() int
	WriterIndex() int
	SetReaderIndex(r int)
	SetWriterIndex(w int)
	// SetIndex assigns both cursors at once, validating the full invariant.
	SetIndex(r, w int)

	ReadableBytes() int
	WritableBytes() int
	Readable() bool
	Writable() bool

	// Clear resets both cursors to zero. Content is left untouched.
	Clear()
	// Skip advances the reader index by n.
	Skip(n int)
	// DiscardReadBytes moves [readerIndex, writerIndex) to offset 0 and
	// decreases both cursors by the old reader index.
	DiscardReadBytes()

	// Absolute primitive accessors.
	GetUint8(i int) byte
	GetUint16(i int) uint16
	GetUint32(i int) uint32
	GetUint64(i int) uint64
	SetUint8(i int, v byte)
	SetUint16(i int, v uint16)
	SetUint32(i int, v uint32)
	SetUint64(i int, v uint64)

	// Relative primitive accessors.
	ReadUint8() byte
	ReadUint16() uint16
	ReadUint32() uint32
	ReadUint64() uint64
	WriteUint8(v byte)
	WriteUint16(v uint16)
	WriteUint32(v uint32)
	WriteUint64(v uint64)

	// GetBytes copies len(dst) bytes starting at i into dst.
	GetBytes(i int, dst []byte)
	// SetBytes copies src into the buffer starting at i.
	SetBytes(i int, src []byte)
	// GetBytesBuf copies n bytes from i into dst at dstIndex. Neither side's
	// cursors move.
	GetBytesBuf(i int, dst Buf, dstIndex, n int)
	// SetBytesBuf copies n bytes from src at srcIndex into the buffer at i.
	SetBytesBuf(i int, src Buf, srcIndex, n int)
	// GetBytesWriter streams n bytes starting at i into w and returns the
	// count actually written.
	GetBytesWriter(i int, w io.Writer, n int) (int, error)
	// SetBytesReader reads up to n bytes from r into the buffer at i and
	// returns the count actually read. End of input surfaces as io.EOF with
	// a zero count; a short read returns the short count and no error.
	SetBytesReader(i int, r io.Reader, n int) (int, error)

	// ReadBytes transfers the next n readable bytes into a new owning buffer.
	ReadBytes(n int) Buf
	// ReadBytesInto fills dst from the readable region, advancing the reader.
	ReadBytesInto(dst []byte)
	// WriteBytes appends src, advancing the writer.
	WriteBytes(src []byte)
	// WriteBytesBuf transfers all readable bytes of src into this buffer,
	// advancing src's reader index and this buffer's writer index.
	WriteBytesBuf(src Buf)

	// Slice returns a view over [i, i+n) sharing storage with this buffer;
	// the view keeps its own cursors.
	Slice(i, n int) Buf
	// Duplicate returns a full-range view with independent cursors.
	Duplicate() Buf
	// Copy returns a new owning buffer holding a copy of [i, i+n).
	Copy(i, n int) Buf

	// Window exposes [i, i+n) as a raw byte slice for scatter/gather interop
	// with code outside the buffer abstraction.
	Window(i, n int) []byte

	// HasArray reports whether the buffer is backed by an accessible
	// contiguous byte array. Array and ArrayOffset are valid only then.
	HasArray() bool
	Array() []byte
	ArrayOffset() int

	// Unwrap returns the parent of a derived view, or nil for root buffers.
	Unwrap() Buf
}

// MsgQueue is the FIFO message form of a stage buffer.
type MsgQueue interface {
	Add(msg any)
	// Poll removes and returns the oldest message; ok is false when empty.
	Poll() (msg any, ok bool)
	Peek() (msg any, ok bool)
	Len() int
}

// Holder is the discriminated buffer holder a handler returns at
// registration: exactly one of a byte buffer or a message queue.
type Holder struct {
	bytes Buf
	msgs  MsgQueue
}

// BytesHolder declares a stream-shaped stage buffer.
func BytesHolder(b Buf) Holder { return Holder{bytes: b} }

// MessagesHolder declares a message-shaped stage buffer.
func MessagesHolder(q MsgQueue) Holder { return Holder{msgs: q} }

func (h Holder) HasBytes() bool { return h.bytes != nil }
func (h Holder) HasMessages() bool { return h.msgs != nil }
func (h Holder) Bytes() Buf { return h.bytes }
func (h Holder) Messages() MsgQueue { return h.msgs }
