// File: core/pipeline/crossloop_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-executor handoff: producer and consumer contexts pinned to
// different loops must observe the same byte sequence, in order, without
// loss or duplication.

package pipeline_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
	"github.com/momentics/hioload-pipeline/core/concurrency"
	"github.com/momentics/hioload-pipeline/core/pipeline"
	"github.com/momentics/hioload-pipeline/fake"
)

// collector accumulates every inbound byte it sees.
type collector struct {
	api.StateBase

	mu   sync.Mutex
	data []byte
}

func (c *collector) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(buffer.Dynamic(0)), nil
}

func (c *collector) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	n := in.ReadableBytes()
	if n == 0 {
		return nil
	}
	chunk := make([]byte, n)
	in.ReadBytesInto(chunk)
	c.mu.Lock()
	c.data = append(c.data, chunk...)
	c.mu.Unlock()
	return nil
}

func (c *collector) snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

func TestCrossLoopHandoffPreservesByteSequence(t *testing.T) {
	channelLoop := concurrency.NewLoop()
	defer channelLoop.Close()
	workerGroup := concurrency.NewLoopGroup(1)
	defer workerGroup.Close()

	ch := pipeline.NewChannel(channelLoop, fake.NewTransport())
	sink := &collector{}
	require.NoError(t, ch.Pipeline().AddLast(workerGroup, "collect", sink))
	ch.Register()
	ch.Activate()

	const total = 1 << 20 // 1 MiB
	payload := make([]byte, total)
	rng := rand.New(rand.NewSource(37))
	rng.Read(payload)

	// 37 uneven chunks.
	chunks := 37
	size := (total + chunks - 1) / chunks
	for off := 0; off < total; off += size {
		end := off + size
		if end > total {
			end = total
		}
		ch.FeedInbound(payload[off:end])
	}

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == total
	}, 5*time.Second, time.Millisecond, "consumer sees every produced byte")
	assert.Equal(t, payload, sink.snapshot(), "no reorder, no loss, no duplication")
}

func TestCrossLoopContextsSharePinnedChild(t *testing.T) {
	channelLoop := concurrency.NewLoop()
	defer channelLoop.Close()
	group := concurrency.NewLoopGroup(4)
	defer group.Close()

	ch := pipeline.NewChannel(channelLoop, fake.NewTransport())
	require.NoError(t, ch.Pipeline().AddLast(group, "one", &collector{}))
	require.NoError(t, ch.Pipeline().AddLast(group, "two", &collector{}))

	first := ch.Pipeline().Context("one").Executor()
	second := ch.Pipeline().Context("two").Executor()
	assert.Same(t, first, second, "one stable child executor per group per channel")
	assert.NotSame(t, api.Executor(channelLoop), first)
}
