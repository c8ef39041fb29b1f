// File: core/pipeline/bridge_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/core/buffer"
)

func TestStreamBridgeFillFlush(t *testing.T) {
	b := newStreamBridge(buffer.Default, 8, nopStats{})

	b.Intake().WriteBytes([]byte{1, 2, 3})
	b.Fill()
	assert.Equal(t, 0, b.Intake().ReadableBytes(), "fill drains and compacts the intake")

	b.Intake().WriteBytes([]byte{4, 5})
	b.Fill()

	out := buffer.Dynamic(0)
	b.Flush(out)
	got := make([]byte, 5)
	out.ReadBytesInto(got)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got, "chunks flush in fill order")
}

func TestStreamBridgeFillEmptyIsNoop(t *testing.T) {
	b := newStreamBridge(buffer.Default, 8, nopStats{})
	b.Fill()
	out := buffer.Dynamic(0)
	b.Flush(out)
	assert.Equal(t, 0, out.ReadableBytes())
}

func TestMessageBridgeBatchesInFIFOOrder(t *testing.T) {
	b := newMessageBridge(8, nopStats{})

	b.Intake().Add("a")
	b.Intake().Add("b")
	b.Fill()
	b.Intake().Add("c")
	b.Fill()
	b.Fill() // empty intake: no-op

	out := buffer.NewMsgQueue()
	b.Flush(out)
	require.Equal(t, 3, out.Len())
	first, _ := out.Poll()
	second, _ := out.Poll()
	third, _ := out.Poll()
	assert.Equal(t, []any{"a", "b", "c"}, []any{first, second, third})
}
