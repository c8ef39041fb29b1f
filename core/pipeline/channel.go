// File: core/pipeline/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concrete channel: identity, loop binding, transport, lifecycle state and
// the pipeline built around the head/tail sentinels.

package pipeline

import (
	"net"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

const defaultHeadEstimate = 4096

type channelConfig struct {
	alloc        buffer.Allocator
	log          *zap.Logger
	stats        Stats
	bridgeCap    int
	headEstimate int
}

// ChannelOption tunes a channel and its pipeline at construction.
type ChannelOption func(*channelConfig)

// WithLogger routes pipeline diagnostics through log.
func WithLogger(log *zap.Logger) ChannelOption {
	return func(c *channelConfig) { c.log = log }
}

// WithAllocator selects the buffer factory for sentinel buffers and bridges.
func WithAllocator(a buffer.Allocator) ChannelOption {
	return func(c *channelConfig) { c.alloc = a }
}

// WithStats wires instrumentation callbacks.
func WithStats(s Stats) ChannelOption {
	return func(c *channelConfig) { c.stats = s }
}

// WithBridgeCapacity bounds bridge exchange queues, in batches.
func WithBridgeCapacity(n int) ChannelOption {
	return func(c *channelConfig) { c.bridgeCap = n }
}

// WithHeadBufferEstimate pre-sizes the head sentinel's byte buffers.
func WithHeadBufferEstimate(n int) ChannelOption {
	return func(c *channelConfig) { c.headEstimate = n }
}

// Channel is the default api.Channel implementation.
type Channel struct {
	id        string
	loop      api.Executor
	transport api.Transport
	pipeline  *Pipeline
	log       *zap.Logger

	registered atomic.Bool
	active     atomic.Bool
	open       atomic.Bool

	closeFuture api.Future
}

// NewChannel builds a channel over transport, driven by loop.
func NewChannel(loop api.Executor, transport api.Transport, opts ...ChannelOption) *Channel {
	cfg := channelConfig{
		alloc:        buffer.Default,
		log:          zap.NewNop(),
		stats:        nopStats{},
		bridgeCap:    defaultBridgeCapacity,
		headEstimate: defaultHeadEstimate,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	ch := &Channel{
		id:          uuid.NewString(),
		loop:        loop,
		transport:   transport,
		log:         cfg.log,
		closeFuture: NewFuture(),
	}
	ch.open.Store(true)
	ch.pipeline = newPipeline(ch, cfg)
	return ch
}

func (ch *Channel) ID() string { return ch.id }
func (ch *Channel) Loop() api.Executor { return ch.loop }
func (ch *Channel) Pipeline() api.Pipeline { return ch.pipeline }
func (ch *Channel) IsRegistered() bool { return ch.registered.Load() }
func (ch *Channel) IsActive() bool { return ch.active.Load() }
func (ch *Channel) IsOpen() bool { return ch.open.Load() }

func (ch *Channel) NewFuture() api.Future { return NewFuture() }

func (ch *Channel) NewSucceededFuture() api.Future { return NewSucceededFuture() }

func (ch *Channel) NewFailedFuture(cause error) api.Future { return NewFailedFuture(cause) }

// CloseFuture completes when the channel has fully closed.
func (ch *Channel) CloseFuture() api.Future { return ch.closeFuture }

// Register fires channelRegistered through the pipeline once.
func (ch *Channel) Register() {
	if ch.registered.CompareAndSwap(false, true) {
		ch.pipeline.FireChannelRegistered()
	}
}

// Activate fires channelActive through the pipeline once.
func (ch *Channel) Activate() {
	if !ch.open.Load() {
		return
	}
	if ch.active.CompareAndSwap(false, true) {
		ch.pipeline.FireChannelActive()
	}
}

// FeedInbound is the transport entry point: it appends p to the head
// inbound buffer on the channel loop and announces the update. The bytes
// are copied; callers may reuse p.
func (ch *Channel) FeedInbound(p []byte) {
	data := make([]byte, len(p))
	copy(data, p)
	task := func() {
		ch.pipeline.InboundBytes().WriteBytes(data)
		ch.pipeline.FireInboundBufferUpdated()
	}
	if ch.loop.InLoop() {
		task()
		return
	}
	if err := ch.loop.Submit(task); err != nil {
		ch.log.Error("inbound data dropped: loop closed", zap.Error(err))
	}
}

// doClose runs on the channel loop via the head operation handler.
func (ch *Channel) doClose(f api.Future) error {
	if !ch.open.CompareAndSwap(true, false) {
		f.Succeed()
		return nil
	}
	err := ch.transport.Close()
	if ch.active.Swap(false) {
		ch.pipeline.FireChannelInactive()
	}
	if ch.registered.Swap(false) {
		ch.pipeline.FireChannelUnregistered()
	}
	ch.closeFuture.Succeed()
	if err != nil {
		return errors.Wrap(err, "transport close")
	}
	f.Succeed()
	return nil
}

func (ch *Channel) doDeregister(f api.Future) error {
	if ch.registered.Swap(false) {
		ch.pipeline.FireChannelUnregistered()
	}
	f.Succeed()
	return nil
}

// BindTransport is implemented by transports that support a local bind.
type BindTransport interface {
	Bind(addr net.Addr) error
}

// ConnectTransport is implemented by transports that dial a peer.
type ConnectTransport interface {
	Connect(remote, local net.Addr) error
}
