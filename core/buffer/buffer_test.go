// File: core/buffer/buffer_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/api"
)

func TestCursorInvariantPropertyBased(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		b := Dynamic(32)
		for i := 0; i < 5000; i++ {
			switch rng.Intn(5) {
			case 0:
				b.WriteUint8(byte(rng.Intn(256)))
			case 1:
				if b.ReadableBytes() >= 1 {
					b.ReadUint8()
				}
			case 2:
				n := rng.Intn(64)
				p := make([]byte, n)
				b.WriteBytes(p)
			case 3:
				if n := b.ReadableBytes(); n > 0 {
					b.Skip(rng.Intn(n + 1))
				}
			case 4:
				b.DiscardReadBytes()
			}
			r, w, c := b.ReaderIndex(), b.WriterIndex(), b.Capacity()
			if r < 0 || r > w || w > c {
				t.Fatalf("invariant violated after op %d: r=%d w=%d cap=%d", i, r, w, c)
			}
		}
	}
}

func TestSetIndexValidation(t *testing.T) {
	b := New(16)
	b.SetIndex(4, 12)
	assert.Equal(t, 4, b.ReaderIndex())
	assert.Equal(t, 12, b.WriterIndex())

	assert.Panics(t, func() { b.SetIndex(8, 4) })
	assert.Panics(t, func() { b.SetIndex(0, 17) })
	assert.Panics(t, func() { b.SetReaderIndex(13) })
	assert.Panics(t, func() { b.SetWriterIndex(3) })
}

func TestDiscardReadBytesKeepsReadableContent(t *testing.T) {
	b := New(32)
	b.WriteBytes([]byte("hello world"))
	b.Skip(6)
	want := b.ReadableBytes()

	b.DiscardReadBytes()

	assert.Equal(t, 0, b.ReaderIndex())
	assert.Equal(t, want, b.ReadableBytes())
	out := make([]byte, want)
	b.ReadBytesInto(out)
	assert.Equal(t, []byte("world"), out)
}

func TestDiscardReadBytesAtZeroIsNoop(t *testing.T) {
	b := New(8)
	b.WriteBytes([]byte{1, 2, 3})
	b.DiscardReadBytes()
	assert.Equal(t, 3, b.WriterIndex())
}

func TestDuplicateHasIndependentCursors(t *testing.T) {
	b := New(16)
	b.WriteBytes([]byte{1, 2, 3, 4})

	d := b.Duplicate()
	assert.Equal(t, byte(1), d.ReadUint8())
	assert.Equal(t, byte(2), d.ReadUint8())

	// Parent cursors are untouched.
	assert.Equal(t, 0, b.ReaderIndex())
	assert.Equal(t, 4, b.ReadableBytes())

	// Storage is shared: mutations through the duplicate are visible.
	d.SetUint8(0, 9)
	assert.Equal(t, byte(9), b.GetUint8(0))
}

func TestSliceWindowsAndSpecialCases(t *testing.T) {
	b := New(8)
	b.WriteBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})

	s := b.Slice(2, 3)
	assert.Equal(t, 3, s.Capacity())
	assert.Equal(t, 3, s.ReadableBytes())
	assert.Equal(t, byte(2), s.GetUint8(0))
	assert.Panics(t, func() { s.GetUint8(3) }, "slice must bound reads to its window")

	// Shared storage.
	s.SetUint8(0, 42)
	assert.Equal(t, byte(42), b.GetUint8(2))

	// Zero-length slice is the canonical empty buffer.
	assert.Same(t, Empty, b.Slice(1, 0))

	// Full-range slice degrades to a duplicate with cursors (0, capacity).
	full := b.Slice(0, b.Capacity())
	assert.Equal(t, 0, full.ReaderIndex())
	assert.Equal(t, b.Capacity(), full.WriterIndex())
	assert.Same(t, b, full.Unwrap())
}

func TestCopyOwnsStorage(t *testing.T) {
	b := New(8)
	b.WriteBytes([]byte{1, 2, 3, 4})
	c := b.Copy(1, 2)
	c.SetUint8(0, 99)
	assert.Equal(t, byte(2), b.GetUint8(1))
	assert.Equal(t, 2, c.ReadableBytes())
	assert.Nil(t, c.Unwrap())
}

func TestPrimitiveAccessorsByteOrder(t *testing.T) {
	be := New(16)
	be.WriteUint16(0x0102)
	be.WriteUint32(0x03040506)
	be.WriteUint64(0x0708090a0b0c0d0e)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e}, be.Window(0, 14))
	assert.Equal(t, uint16(0x0102), be.ReadUint16())
	assert.Equal(t, uint32(0x03040506), be.ReadUint32())
	assert.Equal(t, uint64(0x0708090a0b0c0d0e), be.ReadUint64())

	le := Allocator{Order: binary.LittleEndian}.New(8)
	le.WriteUint16(0x0102)
	assert.Equal(t, []byte{2, 1}, le.Window(0, 2))
	le.SetUint32(2, 0x01020304)
	assert.Equal(t, uint32(0x01020304), le.GetUint32(2))
}

func TestAbsoluteAccessorsDoNotMoveCursors(t *testing.T) {
	b := New(8)
	b.SetUint32(0, 0xdeadbeef)
	assert.Equal(t, 0, b.WriterIndex())
	assert.Equal(t, uint32(0xdeadbeef), b.GetUint32(0))
	assert.Equal(t, 0, b.ReaderIndex())
}

func TestDynamicGrowth(t *testing.T) {
	b := Dynamic(4)
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	b.WriteBytes(payload)
	assert.GreaterOrEqual(t, b.Capacity(), 1000)
	out := make([]byte, 1000)
	b.ReadBytesInto(out)
	assert.Equal(t, payload, out)
}

func TestWrappedBufferIsFixed(t *testing.T) {
	p := []byte{1, 2, 3, 4}
	b := Wrap(p)
	assert.Equal(t, 4, b.ReadableBytes(), "wrapped buffers start fully readable")
	assert.Panics(t, func() { b.WriteUint8(5) })

	// The view aliases the caller's memory.
	p[0] = 9
	assert.Equal(t, byte(9), b.GetUint8(0))
}

func TestBoundsErrorsCarryDetail(t *testing.T) {
	b := New(4)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, api.IsBounds(err))
	}()
	b.GetUint32(2)
}

func TestReadPastWriterFails(t *testing.T) {
	b := New(8)
	b.WriteBytes([]byte{1, 2})
	assert.Panics(t, func() { b.ReadUint32() })
	assert.Panics(t, func() { b.ReadBytes(3) })
	assert.Panics(t, func() { b.Skip(3) })
}

func TestNegativeIndicesFail(t *testing.T) {
	b := New(8)
	assert.Panics(t, func() { b.GetUint8(-1) })
	assert.Panics(t, func() { b.Slice(-1, 2) })
	assert.Panics(t, func() { b.Copy(0, -1) })
}

func TestAllocHook(t *testing.T) {
	var total int
	a := Default.WithAllocHook(func(size int) { total += size })
	a.New(128)
	a.Dynamic(64)
	assert.Equal(t, 192, total)
}
