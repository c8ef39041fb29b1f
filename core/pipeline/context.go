// File: core/pipeline/context.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// handlerContext is one node of the chain: immutable identity, an executor
// pin chosen once, the handler's local buffers, and the lazily-installed
// bridges guarding them across executors.

package pipeline

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-pipeline/api"
)

type handlerContext struct {
	name     string
	handler  api.Handler
	caps     api.Capability
	pipeline *Pipeline
	channel  api.Channel
	executor api.Executor // chosen once; nil until first resolved

	prev atomic.Pointer[handlerContext]
	next atomic.Pointer[handlerContext]

	inBytes  api.Buf
	inMsgs   api.MsgQueue
	outBytes api.Buf
	outMsgs  api.MsgQueue

	inByteBridge  atomic.Pointer[StreamBridge]
	inMsgBridge   atomic.Pointer[MessageBridge]
	outByteBridge atomic.Pointer[StreamBridge]
	outMsgBridge  atomic.Pointer[MessageBridge]

	attrs   sync.Map
	removed atomic.Bool
	release sync.Once
}

// newContext builds a context and allocates its local buffers before it is
// spliced into the chain. A handler that fails to create a holder aborts the
// insertion with ErrPipeline.
func newContext(p *Pipeline, group api.ExecutorGroup, name string, h api.Handler) (*handlerContext, error) {
	ctx := &handlerContext{
		name:     name,
		handler:  h,
		caps:     api.CapabilitiesOf(h),
		pipeline: p,
		channel:  p.channel,
	}
	if group != nil {
		ctx.executor = p.childExecutor(group)
	} else if p.channel.IsRegistered() {
		ctx.executor = p.channel.Loop()
	}

	if ctx.caps.Has(api.CapInbound) {
		holder, err := h.(api.InboundHandler).NewInboundHolder(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", api.ErrPipeline, errors.Wrapf(err, "handler %q failed to create its inbound buffer", name))
		}
		ctx.inBytes = holder.Bytes()
		ctx.inMsgs = holder.Messages()
	}
	if ctx.caps.Has(api.CapOutbound) {
		holder, err := h.(api.OutboundHandler).NewOutboundHolder(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", api.ErrPipeline, errors.Wrapf(err, "handler %q failed to create its outbound buffer", name))
		}
		ctx.outBytes = holder.Bytes()
		ctx.outMsgs = holder.Messages()
	}
	return ctx, nil
}

func (ctx *handlerContext) nextCtx() *handlerContext { return ctx.next.Load() }
func (ctx *handlerContext) prevCtx() *handlerContext { return ctx.prev.Load() }

// executorOrLoop resolves the pin lazily: contexts added before registration
// inherit the channel loop the first time they dispatch.
func (ctx *handlerContext) executorOrLoop() api.Executor {
	if ctx.executor == nil {
		ctx.executor = ctx.channel.Loop()
	}
	return ctx.executor
}

func (ctx *handlerContext) Name() string { return ctx.name }
func (ctx *handlerContext) Handler() api.Handler { return ctx.handler }
func (ctx *handlerContext) Channel() api.Channel { return ctx.channel }
func (ctx *handlerContext) Pipeline() api.Pipeline { return ctx.pipeline }
func (ctx *handlerContext) Executor() api.Executor { return ctx.executorOrLoop() }
func (ctx *handlerContext) Capabilities() api.Capability { return ctx.caps }
func (ctx *handlerContext) NewFuture() api.Future { return ctx.channel.NewFuture() }

func (ctx *handlerContext) Attr(key string) (any, bool) { return ctx.attrs.Load(key) }
func (ctx *handlerContext) SetAttr(key string, v any) { ctx.attrs.Store(key, v) }

func (ctx *handlerContext) HasInboundBytes() bool { return ctx.inBytes != nil }
func (ctx *handlerContext) HasInboundMessages() bool { return ctx.inMsgs != nil }
func (ctx *handlerContext) HasOutboundBytes() bool { return ctx.outBytes != nil }
func (ctx *handlerContext) HasOutboundMessages() bool { return ctx.outMsgs != nil }

func (ctx *handlerContext) InboundBytes() api.Buf {
	if ctx.inBytes == nil {
		panic(errors.Wrapf(api.ErrNoBuffer, "context %q has no inbound byte buffer", ctx.name))
	}
	return ctx.inBytes
}

func (ctx *handlerContext) InboundMessages() api.MsgQueue {
	if ctx.inMsgs == nil {
		panic(errors.Wrapf(api.ErrNoBuffer, "context %q has no inbound message buffer", ctx.name))
	}
	return ctx.inMsgs
}

func (ctx *handlerContext) OutboundBytes() api.Buf {
	if ctx.outBytes == nil {
		panic(errors.Wrapf(api.ErrNoBuffer, "context %q has no outbound byte buffer", ctx.name))
	}
	return ctx.outBytes
}

func (ctx *handlerContext) OutboundMessages() api.MsgQueue {
	if ctx.outMsgs == nil {
		panic(errors.Wrapf(api.ErrNoBuffer, "context %q has no outbound message buffer", ctx.name))
	}
	return ctx.outMsgs
}

func (ctx *handlerContext) HasNextInboundBytes() bool {
	return ctx.pipeline.hasNextInboundBytes(ctx.nextCtx())
}

func (ctx *handlerContext) HasNextInboundMessages() bool {
	return ctx.pipeline.hasNextInboundMessages(ctx.nextCtx())
}

func (ctx *handlerContext) HasNextOutboundBytes() bool {
	return ctx.pipeline.hasNextOutboundBytes(ctx.prevCtx())
}

func (ctx *handlerContext) HasNextOutboundMessages() bool {
	return ctx.pipeline.hasNextOutboundMessages(ctx.prevCtx())
}

func (ctx *handlerContext) NextInboundBytes() api.Buf {
	return ctx.pipeline.nextInboundBytes(ctx.nextCtx())
}

func (ctx *handlerContext) NextInboundMessages() api.MsgQueue {
	return ctx.pipeline.nextInboundMessages(ctx.nextCtx())
}

func (ctx *handlerContext) NextOutboundBytes() api.Buf {
	return ctx.pipeline.nextOutboundBytes(ctx.prevCtx())
}

func (ctx *handlerContext) NextOutboundMessages() api.MsgQueue {
	return ctx.pipeline.nextOutboundMessages(ctx.prevCtx())
}

// streamBridgeIn installs (once) and returns the inbound stream bridge.
func (ctx *handlerContext) streamBridgeIn() *StreamBridge {
	if b := ctx.inByteBridge.Load(); b != nil {
		return b
	}
	nb := newStreamBridge(ctx.pipeline.alloc, ctx.pipeline.bridgeCap, ctx.pipeline.stats)
	if ctx.inByteBridge.CompareAndSwap(nil, nb) {
		return nb
	}
	return ctx.inByteBridge.Load()
}

func (ctx *handlerContext) msgBridgeIn() *MessageBridge {
	if b := ctx.inMsgBridge.Load(); b != nil {
		return b
	}
	nb := newMessageBridge(ctx.pipeline.bridgeCap, ctx.pipeline.stats)
	if ctx.inMsgBridge.CompareAndSwap(nil, nb) {
		return nb
	}
	return ctx.inMsgBridge.Load()
}

func (ctx *handlerContext) streamBridgeOut() *StreamBridge {
	if b := ctx.outByteBridge.Load(); b != nil {
		return b
	}
	nb := newStreamBridge(ctx.pipeline.alloc, ctx.pipeline.bridgeCap, ctx.pipeline.stats)
	if ctx.outByteBridge.CompareAndSwap(nil, nb) {
		return nb
	}
	return ctx.outByteBridge.Load()
}

func (ctx *handlerContext) msgBridgeOut() *MessageBridge {
	if b := ctx.outMsgBridge.Load(); b != nil {
		return b
	}
	nb := newMessageBridge(ctx.pipeline.bridgeCap, ctx.pipeline.stats)
	if ctx.outMsgBridge.CompareAndSwap(nil, nb) {
		return nb
	}
	return ctx.outMsgBridge.Load()
}

// fillBridges publishes everything producers parked in this context's bridge
// intakes. Runs on the producer executor.
func (ctx *handlerContext) fillBridges() {
	if b := ctx.inByteBridge.Load(); b != nil {
		b.Fill()
	}
	if b := ctx.inMsgBridge.Load(); b != nil {
		b.Fill()
	}
	if b := ctx.outByteBridge.Load(); b != nil {
		b.Fill()
	}
	if b := ctx.outMsgBridge.Load(); b != nil {
		b.Fill()
	}
}

// flushBridges drains exchanged data into this context's local buffers. Runs
// on this context's executor.
func (ctx *handlerContext) flushBridges() {
	if b := ctx.inByteBridge.Load(); b != nil && ctx.inBytes != nil {
		b.Flush(ctx.inBytes)
	}
	if b := ctx.inMsgBridge.Load(); b != nil && ctx.inMsgs != nil {
		b.Flush(ctx.inMsgs)
	}
	if b := ctx.outByteBridge.Load(); b != nil && ctx.outBytes != nil {
		b.Flush(ctx.outBytes)
	}
	if b := ctx.outMsgBridge.Load(); b != nil && ctx.outMsgs != nil {
		b.Flush(ctx.outMsgs)
	}
}

// releaseBuffers drains pending bridge data and clears the local buffers.
// Runs exactly once, on removal from the pipeline.
func (ctx *handlerContext) releaseBuffers() {
	ctx.release.Do(func() {
		ctx.fillBridges()
		ctx.flushBridges()
		if ctx.inBytes != nil {
			ctx.inBytes.Clear()
		}
		if ctx.outBytes != nil {
			ctx.outBytes.Clear()
		}
		for ctx.inMsgs != nil {
			if _, ok := ctx.inMsgs.Poll(); !ok {
				break
			}
		}
		for ctx.outMsgs != nil {
			if _, ok := ctx.outMsgs.Poll(); !ok {
				break
			}
		}
	})
}

// Inbound event propagation.

func (ctx *handlerContext) FireChannelRegistered() {
	if next := nextContext(ctx.nextCtx(), api.CapState); next != nil {
		ctx.pipeline.fireChannelRegistered(next)
	}
}

func (ctx *handlerContext) FireChannelUnregistered() {
	if next := nextContext(ctx.nextCtx(), api.CapState); next != nil {
		ctx.pipeline.fireChannelUnregistered(next)
	}
}

func (ctx *handlerContext) FireChannelActive() {
	if next := nextContext(ctx.nextCtx(), api.CapState); next != nil {
		ctx.pipeline.fireChannelActive(next)
	}
}

func (ctx *handlerContext) FireChannelInactive() {
	if next := nextContext(ctx.nextCtx(), api.CapState); next != nil {
		ctx.pipeline.fireChannelInactive(next)
	}
}

// FireInboundBufferUpdated fills the bridge of the next state context (the
// intake this producer wrote through) on the producer executor, then hands
// the event to the consumer executor.
func (ctx *handlerContext) FireInboundBufferUpdated() {
	ex := ctx.executorOrLoop()
	if ex.InLoop() {
		ctx.fireNextInboundUpdated()
		return
	}
	_ = ex.Submit(ctx.fireNextInboundUpdated)
}

func (ctx *handlerContext) fireNextInboundUpdated() {
	next := nextContext(ctx.nextCtx(), api.CapState)
	if next == nil {
		return
	}
	next.fillBridges()
	ctx.pipeline.fireInboundBufferUpdated(next)
}

func (ctx *handlerContext) FireExceptionCaught(cause error) {
	ctx.pipeline.fireExceptionCaught(ctx.nextCtx(), cause)
}

func (ctx *handlerContext) FireUserEvent(ev any) {
	ctx.pipeline.fireUserEvent(ctx.nextCtx(), ev)
}

// Outbound operations.

func (ctx *handlerContext) ensureFuture(f api.Future) api.Future {
	if f == nil {
		return ctx.channel.NewFuture()
	}
	return f
}

func (ctx *handlerContext) Bind(addr net.Addr, f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.bind(prevContext(ctx.prevCtx(), api.CapOperation), addr, f)
}

func (ctx *handlerContext) Connect(remote, local net.Addr, f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.connect(prevContext(ctx.prevCtx(), api.CapOperation), remote, local, f)
}

func (ctx *handlerContext) Disconnect(f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.disconnect(prevContext(ctx.prevCtx(), api.CapOperation), f)
}

func (ctx *handlerContext) Close(f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.close(prevContext(ctx.prevCtx(), api.CapOperation), f)
}

func (ctx *handlerContext) Deregister(f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.deregister(prevContext(ctx.prevCtx(), api.CapOperation), f)
}

// Flush fills the previous operation context's bridges on the calling
// executor before handing it the flush, so bytes written by this stage are
// visible to the operation handler. Called off-loop, it re-submits itself.
func (ctx *handlerContext) Flush(f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	ex := ctx.executorOrLoop()
	if !ex.InLoop() {
		_ = ex.Submit(func() { ctx.Flush(f) })
		return f
	}
	prev := prevContext(ctx.prevCtx(), api.CapOperation)
	if prev == nil {
		f.Fail(errors.Wrap(api.ErrNoSuchContext, "no operation handler below flush origin"))
		return f
	}
	prev.fillBridges()
	ctx.pipeline.flush(prev, f)
	return f
}

func (ctx *handlerContext) Write(msg any, f api.Future) api.Future {
	f = ctx.ensureFuture(f)
	return ctx.pipeline.write(ctx.prevCtx(), msg, f)
}
