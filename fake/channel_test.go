// File: fake/channel_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake_test

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
	"github.com/momentics/hioload-pipeline/fake"
)

// echoHandler copies inbound bytes into the next outbound buffer and
// flushes.
type echoHandler struct {
	api.StateBase
}

func (e *echoHandler) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(buffer.Dynamic(0)), nil
}

func (e *echoHandler) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	if !in.Readable() {
		return nil
	}
	ctx.NextOutboundBytes().WriteBytesBuf(in)
	ctx.Flush(nil)
	return nil
}

// relayHandler forwards inbound bytes unchanged to the next inbound buffer.
type relayHandler struct {
	api.StateBase
}

func (r *relayHandler) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(buffer.Dynamic(0)), nil
}

func (r *relayHandler) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	if in.Readable() {
		ctx.NextInboundBytes().WriteBytesBuf(in)
		ctx.FireInboundBufferUpdated()
	}
	return nil
}

// faultyHandler fails on the first inbound update.
type faultyHandler struct {
	relayHandler
	failed bool
}

func (f *faultyHandler) InboundUpdated(ctx api.Context) error {
	if !f.failed {
		f.failed = true
		return errors.New("boom")
	}
	return f.relayHandler.InboundUpdated(ctx)
}

func TestEchoRoundTrip(t *testing.T) {
	ch := fake.NewStreamChannel(&echoHandler{})

	ch.WriteInbound([]byte{0x01, 0x02, 0x03})

	assert.Equal(t, []byte{0x01, 0x02, 0x03}, ch.OutboundBytes())
	require.NoError(t, ch.PollError())
}

func TestEchoPreservesOrderAcrossChunks(t *testing.T) {
	ch := fake.NewStreamChannel(&echoHandler{})

	payload := make([]byte, 4096)
	rng := rand.New(rand.NewSource(1))
	rng.Read(payload)
	for off := 0; off < len(payload); off += 100 {
		end := off + 100
		if end > len(payload) {
			end = len(payload)
		}
		ch.WriteInbound(payload[off:end])
	}

	assert.Equal(t, payload, ch.OutboundBytes())
}

func TestIdentityChainPreservesReadableBytes(t *testing.T) {
	ch := fake.NewStreamChannel(&relayHandler{}, &relayHandler{}, &relayHandler{})

	payload := make([]byte, 1000)
	rng := rand.New(rand.NewSource(2))
	rng.Read(payload)
	ch.WriteInbound(payload)

	got := ch.InboundBytes()
	assert.Equal(t, len(payload), len(got), "identity stages neither add nor drop bytes")
	assert.Equal(t, payload, got)
}

func TestExceptionRoutedToNextContextOnce(t *testing.T) {
	ch := fake.NewStreamChannel(&relayHandler{}, &faultyHandler{})

	ch.WriteInbound([]byte{1})

	err := ch.PollError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NoError(t, ch.PollError(), "the cause is delivered exactly once")
	assert.True(t, ch.IsActive(), "a handler failure does not change channel state")
	assert.True(t, ch.IsOpen())
}

func TestPanicInHandlerIsRouted(t *testing.T) {
	panicky := &panicHandler{}
	ch := fake.NewStreamChannel(panicky)

	ch.WriteInbound([]byte{1})

	err := ch.PollError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
	assert.True(t, ch.IsOpen())
}

type panicHandler struct {
	relayHandler
}

func (p *panicHandler) InboundUpdated(ctx api.Context) error {
	panic("kaboom")
}

func TestWriteToClosedChannel(t *testing.T) {
	ch := fake.NewStreamChannel(&echoHandler{})

	closeFuture := ch.Pipeline().Close(nil)
	require.True(t, closeFuture.Succeeded())
	assert.False(t, ch.IsOpen())
	assert.True(t, ch.Transport().Closed())

	f := ch.WriteOutbound([]byte("late"))
	require.True(t, f.IsDone())
	assert.ErrorIs(t, f.Err(), api.ErrClosedChannel)

	err := ch.PollError()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrClosedChannel)
	assert.NoError(t, ch.PollError(), "exceptionCaught fired exactly once")
}

func TestCloseIsIdempotent(t *testing.T) {
	ch := fake.NewStreamChannel(&echoHandler{})
	first := ch.Pipeline().Close(nil)
	second := ch.Pipeline().Close(nil)
	assert.True(t, first.Succeeded())
	assert.True(t, second.Succeeded())
	assert.True(t, ch.CloseFuture().Succeeded())
}

func TestLifecycleEventsReachStateHandlers(t *testing.T) {
	track := &lifecycleTracker{}
	ch := fake.NewStreamChannel(track)

	assert.Equal(t, []string{"registered", "active"}, track.events)

	ch.Pipeline().Close(nil)
	assert.Equal(t, []string{"registered", "active", "inactive", "unregistered"}, track.events)
}

type lifecycleTracker struct {
	events []string
}

func (l *lifecycleTracker) ChannelRegistered(ctx api.Context) error {
	l.events = append(l.events, "registered")
	ctx.FireChannelRegistered()
	return nil
}

func (l *lifecycleTracker) ChannelUnregistered(ctx api.Context) error {
	l.events = append(l.events, "unregistered")
	ctx.FireChannelUnregistered()
	return nil
}

func (l *lifecycleTracker) ChannelActive(ctx api.Context) error {
	l.events = append(l.events, "active")
	ctx.FireChannelActive()
	return nil
}

func (l *lifecycleTracker) ChannelInactive(ctx api.Context) error {
	l.events = append(l.events, "inactive")
	ctx.FireChannelInactive()
	return nil
}

func (l *lifecycleTracker) InboundUpdated(ctx api.Context) error {
	ctx.FireInboundBufferUpdated()
	return nil
}

func TestUserEventTravelsToConsumer(t *testing.T) {
	sink := &userEventSink{}
	ch := fake.NewStreamChannel(&relayHandler{}, sink)

	ch.Pipeline().FireUserEvent("ping")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "ping", sink.events[0])
}

type userEventSink struct {
	relayHandler
	events []any
}

func (u *userEventSink) UserEventTriggered(ctx api.Context, ev any) error {
	u.events = append(u.events, ev)
	return nil
}
