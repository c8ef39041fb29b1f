// File: core/buffer/views.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Derived buffer forms. Slices and duplicates are views over the parent's
// storage with independent cursors; the parent must outlive its views.
// Copies own fresh storage.

package buffer

import "github.com/momentics/hioload-pipeline/api"

func (b *buf) Slice(i, n int) api.Buf {
	b.checkIndex("Slice", i, n)
	if n == 0 {
		return Empty
	}
	if i == 0 && n == b.length {
		d := b.duplicate()
		d.SetIndex(0, n)
		return d
	}
	return &buf{
		arr:    b.arr,
		off:    b.off + i,
		length: n,
		r:      0,
		w:      n,
		order:  b.order,
		parent: b,
	}
}

func (b *buf) Duplicate() api.Buf { return b.duplicate() }

func (b *buf) duplicate() *buf {
	return &buf{
		arr:    b.arr,
		off:    b.off,
		length: b.length,
		r:      b.r,
		w:      b.w,
		order:  b.order,
		parent: b,
	}
}

func (b *buf) Copy(i, n int) api.Buf {
	b.checkIndex("Copy", i, n)
	arr := make([]byte, n)
	copy(arr, b.window(i, n))
	return &buf{
		arr:    arr,
		length: n,
		r:      0,
		w:      n,
		order:  b.order,
	}
}
