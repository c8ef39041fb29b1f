// File: core/buffer/transfer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bulk transfers between buffers, byte slices, readers and writers. When
// both sides expose a backing array the transfer is a single copy call.

package buffer

import (
	"io"

	"github.com/momentics/hioload-pipeline/api"
)

func (b *buf) GetBytes(i int, dst []byte) {
	b.checkIndex("GetBytes", i, len(dst))
	copy(dst, b.window(i, len(dst)))
}

func (b *buf) SetBytes(i int, src []byte) {
	b.checkIndex("SetBytes", i, len(src))
	copy(b.window(i, len(src)), src)
}

// GetBytesBuf copies without moving either side's cursors. The destination's
// writer index stays put even when dst is another api.Buf; relative
// transfers are the cursor-moving counterpart.
func (b *buf) GetBytesBuf(i int, dst api.Buf, dstIndex, n int) {
	b.checkIndex("GetBytesBuf", i, n)
	dst.SetBytes(dstIndex, b.window(i, n))
}

func (b *buf) SetBytesBuf(i int, src api.Buf, srcIndex, n int) {
	b.checkIndex("SetBytesBuf", i, n)
	if src.HasArray() {
		off := src.ArrayOffset() + srcIndex
		copy(b.window(i, n), src.Array()[off:off+n])
		return
	}
	src.GetBytes(srcIndex, b.window(i, n))
}

func (b *buf) GetBytesWriter(i int, w io.Writer, n int) (int, error) {
	b.checkIndex("GetBytesWriter", i, n)
	return w.Write(b.window(i, n))
}

// SetBytesReader reads up to n bytes from r at index i. End of input before
// any byte was read surfaces as (0, io.EOF); a short read returns the short
// count with a nil error and moves nothing else.
func (b *buf) SetBytesReader(i int, r io.Reader, n int) (int, error) {
	b.checkIndex("SetBytesReader", i, n)
	read, err := r.Read(b.window(i, n))
	if read > 0 {
		return read, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil
}

func (b *buf) ReadBytes(n int) api.Buf {
	b.checkReadable("ReadBytes", n)
	out := b.Copy(b.r, n)
	b.r += n
	return out
}

func (b *buf) ReadBytesInto(dst []byte) {
	b.checkReadable("ReadBytesInto", len(dst))
	copy(dst, b.window(b.r, len(dst)))
	b.r += len(dst)
}

func (b *buf) WriteBytes(src []byte) {
	b.ensureWritable("WriteBytes", len(src))
	copy(b.window(b.w, len(src)), src)
	b.w += len(src)
}

// WriteBytesBuf drains all readable bytes of src into this buffer, advancing
// src's reader index and this buffer's writer index.
func (b *buf) WriteBytesBuf(src api.Buf) {
	n := src.ReadableBytes()
	if n == 0 {
		return
	}
	b.ensureWritable("WriteBytesBuf", n)
	if src.HasArray() {
		off := src.ArrayOffset() + src.ReaderIndex()
		copy(b.window(b.w, n), src.Array()[off:off+n])
	} else {
		src.GetBytes(src.ReaderIndex(), b.window(b.w, n))
	}
	src.SetReaderIndex(src.ReaderIndex() + n)
	b.w += n
}
