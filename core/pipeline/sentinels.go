// File: core/pipeline/sentinels.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Head and tail sentinel handlers. The head owns the transport entry
// buffers and terminates outbound operations against the channel's
// transport; the tail sinks inbound leftovers and exceptions nothing else
// consumed.

package pipeline

import (
	"io"
	"net"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/momentics/hioload-pipeline/api"
)

// headHandler is INBOUND+OUTBOUND (byte buffers) and OPERATION: the spliced
// channel end of every pipeline.
type headHandler struct {
	api.StateBase
	ch       *Channel
	p        *Pipeline
	estimate int
}

func newHeadHandler(ch *Channel, p *Pipeline, estimate int) *headHandler {
	if estimate <= 0 {
		estimate = defaultHeadEstimate
	}
	return &headHandler{ch: ch, p: p, estimate: estimate}
}

func (h *headHandler) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(h.p.alloc.Dynamic(h.estimate)), nil
}

func (h *headHandler) NewOutboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(h.p.alloc.Dynamic(h.estimate)), nil
}

// InboundUpdated relays freshly fed transport bytes into the first user
// inbound byte buffer.
func (h *headHandler) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	if !in.Readable() {
		return nil
	}
	if !ctx.HasNextInboundBytes() {
		n := in.ReadableBytes()
		in.Skip(n)
		h.ch.log.Warn("discarded inbound bytes: no inbound byte buffer in pipeline",
			zap.Int("bytes", n), zap.String("channel", h.ch.id))
		return nil
	}
	ctx.NextInboundBytes().WriteBytesBuf(in)
	ctx.FireInboundBufferUpdated()
	return nil
}

func (h *headHandler) Bind(ctx api.Context, addr net.Addr, f api.Future) error {
	if t, ok := h.ch.transport.(BindTransport); ok {
		if err := t.Bind(addr); err != nil {
			return err
		}
	}
	f.Succeed()
	return nil
}

func (h *headHandler) Connect(ctx api.Context, remote, local net.Addr, f api.Future) error {
	if t, ok := h.ch.transport.(ConnectTransport); ok {
		if err := t.Connect(remote, local); err != nil {
			return err
		}
	}
	h.ch.Activate()
	f.Succeed()
	return nil
}

// Disconnect degrades to close: stream transports have no half-open notion
// here.
func (h *headHandler) Disconnect(ctx api.Context, f api.Future) error {
	return h.ch.doClose(f)
}

func (h *headHandler) Close(ctx api.Context, f api.Future) error {
	return h.ch.doClose(f)
}

func (h *headHandler) Deregister(ctx api.Context, f api.Future) error {
	return h.ch.doDeregister(f)
}

// Flush pushes the head outbound buffer into the transport. Writing to a
// closed channel fails the future with ErrClosedChannel; transport errors
// that mean "peer gone" are normalized to the same mark.
func (h *headHandler) Flush(ctx api.Context, f api.Future) error {
	if !h.ch.IsOpen() {
		return errors.Wrap(api.ErrClosedChannel, "flush")
	}
	out := ctx.OutboundBytes()
	if n := out.ReadableBytes(); n > 0 {
		p := make([]byte, n)
		out.ReadBytesInto(p)
		if _, err := h.ch.transport.Write(p); err != nil {
			if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				err = errors.Mark(err, api.ErrClosedChannel)
			}
			return err
		}
	}
	f.Succeed()
	return nil
}

// tailHandler sinks whatever reaches the application end unconsumed.
type tailHandler struct {
	p *Pipeline
}

func newTailHandler(p *Pipeline) *tailHandler { return &tailHandler{p: p} }

func (t *tailHandler) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(t.p.alloc.Dynamic(0)), nil
}

func (t *tailHandler) ChannelRegistered(api.Context) error { return nil }
func (t *tailHandler) ChannelUnregistered(api.Context) error { return nil }
func (t *tailHandler) ChannelActive(api.Context) error { return nil }
func (t *tailHandler) ChannelInactive(api.Context) error { return nil }

func (t *tailHandler) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	if n := in.ReadableBytes(); n > 0 {
		in.Skip(n)
		t.p.log.Warn("discarded inbound bytes that reached the pipeline tail",
			zap.Int("bytes", n), zap.String("channel", t.p.channel.ID()))
	}
	return nil
}

func (t *tailHandler) ExceptionCaught(ctx api.Context, cause error) error {
	t.p.logTerminalException(cause)
	return nil
}
