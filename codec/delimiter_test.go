// File: codec/delimiter_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/codec"
	"github.com/momentics/hioload-pipeline/fake"
)

func frameString(t *testing.T, msg any) string {
	t.Helper()
	buf, ok := msg.(api.Buf)
	require.True(t, ok, "frame messages are buffers")
	out := make([]byte, buf.ReadableBytes())
	buf.GetBytes(buf.ReaderIndex(), out)
	return string(out)
}

func TestFailSlowTooLongFrameRecovery(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(1, codec.NulDelimiter))

	for i := 0; i < 2; i++ {
		ch.WriteInbound([]byte{1, 2})
		require.NoError(t, ch.PollError(), "fail-slow waits for the delimiter")

		ch.WriteInbound([]byte{0})
		assert.ErrorIs(t, ch.PollError(), codec.ErrTooLongFrame)

		ch.WriteInbound([]byte{'A', 0})
		msg, ok := ch.ReadInbound()
		require.True(t, ok)
		assert.Equal(t, "A", frameString(t, msg))
	}
}

func TestFailFastTooLongFrameRecovery(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(1, codec.NulDelimiter, codec.WithFailFast()))

	for i := 0; i < 2; i++ {
		ch.WriteInbound([]byte{1, 2})
		assert.ErrorIs(t, ch.PollError(), codec.ErrTooLongFrame, "fail-fast reports immediately")

		ch.WriteInbound([]byte{0, 'A', 0})
		require.NoError(t, ch.PollError(), "resync delimiter reports nothing new")
		msg, ok := ch.ReadInbound()
		require.True(t, ok)
		assert.Equal(t, "A", frameString(t, msg))
	}
}

func TestDelimiterSplitsBackToBackFrames(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(16, codec.NulDelimiter))

	ch.WriteInbound([]byte("foo\x00bar\x00"))
	first, ok := ch.ReadInbound()
	require.True(t, ok)
	second, ok := ch.ReadInbound()
	require.True(t, ok)
	assert.Equal(t, "foo", frameString(t, first))
	assert.Equal(t, "bar", frameString(t, second))

	_, ok = ch.ReadInbound()
	assert.False(t, ok)
}

func TestDelimiterPartialFrameWaits(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(16, codec.NulDelimiter))

	ch.WriteInbound([]byte("par"))
	_, ok := ch.ReadInbound()
	assert.False(t, ok)

	ch.WriteInbound([]byte("tial\x00"))
	msg, ok := ch.ReadInbound()
	require.True(t, ok)
	assert.Equal(t, "partial", frameString(t, msg))
}

func TestLineDelimiterPrefersShortestFrame(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(64, codec.LineDelimiter))

	ch.WriteInbound([]byte("one\r\ntwo\n"))
	first, ok := ch.ReadInbound()
	require.True(t, ok)
	second, ok := ch.ReadInbound()
	require.True(t, ok)
	assert.Equal(t, "one", frameString(t, first))
	assert.Equal(t, "two", frameString(t, second))
}

func TestKeepDelimiterOption(t *testing.T) {
	ch := fake.NewMessageChannel(codec.NewDelimiterFrameDecoder(16, codec.NulDelimiter, codec.WithKeepDelimiter()))

	ch.WriteInbound([]byte("abc\x00"))
	msg, ok := ch.ReadInbound()
	require.True(t, ok)
	assert.Equal(t, "abc\x00", frameString(t, msg))
}
