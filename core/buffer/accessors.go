// File: core/buffer/accessors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Primitive accessors. Get/Set are absolute and leave the cursors alone;
// Read/Write are relative and advance them. Multi-byte forms honor the
// buffer's byte order.

package buffer

func (b *buf) GetUint8(i int) byte {
	b.checkIndex("GetUint8", i, 1)
	return b.arr[b.off+i]
}

func (b *buf) GetUint16(i int) uint16 {
	b.checkIndex("GetUint16", i, 2)
	return b.order.Uint16(b.window(i, 2))
}

func (b *buf) GetUint32(i int) uint32 {
	b.checkIndex("GetUint32", i, 4)
	return b.order.Uint32(b.window(i, 4))
}

func (b *buf) GetUint64(i int) uint64 {
	b.checkIndex("GetUint64", i, 8)
	return b.order.Uint64(b.window(i, 8))
}

func (b *buf) SetUint8(i int, v byte) {
	b.checkIndex("SetUint8", i, 1)
	b.arr[b.off+i] = v
}

func (b *buf) SetUint16(i int, v uint16) {
	b.checkIndex("SetUint16", i, 2)
	b.order.PutUint16(b.window(i, 2), v)
}

func (b *buf) SetUint32(i int, v uint32) {
	b.checkIndex("SetUint32", i, 4)
	b.order.PutUint32(b.window(i, 4), v)
}

func (b *buf) SetUint64(i int, v uint64) {
	b.checkIndex("SetUint64", i, 8)
	b.order.PutUint64(b.window(i, 8), v)
}

func (b *buf) ReadUint8() byte {
	b.checkReadable("ReadUint8", 1)
	v := b.arr[b.off+b.r]
	b.r++
	return v
}

func (b *buf) ReadUint16() uint16 {
	b.checkReadable("ReadUint16", 2)
	v := b.order.Uint16(b.window(b.r, 2))
	b.r += 2
	return v
}

func (b *buf) ReadUint32() uint32 {
	b.checkReadable("ReadUint32", 4)
	v := b.order.Uint32(b.window(b.r, 4))
	b.r += 4
	return v
}

func (b *buf) ReadUint64() uint64 {
	b.checkReadable("ReadUint64", 8)
	v := b.order.Uint64(b.window(b.r, 8))
	b.r += 8
	return v
}

func (b *buf) WriteUint8(v byte) {
	b.ensureWritable("WriteUint8", 1)
	b.arr[b.off+b.w] = v
	b.w++
}

func (b *buf) WriteUint16(v uint16) {
	b.ensureWritable("WriteUint16", 2)
	b.order.PutUint16(b.window(b.w, 2), v)
	b.w += 2
}

func (b *buf) WriteUint32(v uint32) {
	b.ensureWritable("WriteUint32", 4)
	b.order.PutUint32(b.window(b.w, 4), v)
	b.w += 4
}

func (b *buf) WriteUint64(v uint64) {
	b.ensureWritable("WriteUint64", 8)
	b.order.PutUint64(b.window(b.w, 8), v)
	b.w += 8
}
