// File: core/pipeline/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event dispatch and buffer discovery. Every handler invocation happens on
// the owning context's executor; errors and panics from handlers are routed
// through fireExceptionCaught instead of unwinding into the loop.

package pipeline

import (
	"net"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/momentics/hioload-pipeline/api"
)

// execute runs task inline when already on ex's loop, otherwise submits it.
func (p *Pipeline) execute(ex api.Executor, task func()) {
	if ex.InLoop() {
		task()
		return
	}
	if err := ex.Submit(task); err != nil {
		p.log.Error("event dropped: executor closed", zap.Error(err))
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "handler panic")
	}
	return errors.Newf("handler panic: %v", r)
}

// guard invokes a handler callback, converting returned errors and panics
// into routed exceptions originating at ctx.
func (p *Pipeline) guard(ctx *handlerContext, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			p.notifyHandlerException(ctx, panicError(r))
		}
	}()
	if err := fn(); err != nil {
		p.notifyHandlerException(ctx, err)
	}
}

// guardOp is guard for outbound operations: a failure additionally completes
// the operation future exceptionally.
func (p *Pipeline) guardOp(ctx *handlerContext, f api.Future, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			err := panicError(r)
			f.Fail(err)
			p.notifyHandlerException(ctx, err)
		}
	}()
	if err := fn(); err != nil {
		f.Fail(err)
		p.notifyHandlerException(ctx, err)
	}
}

// notifyHandlerException routes a handler failure forward from the failing
// context.
func (p *Pipeline) notifyHandlerException(ctx *handlerContext, cause error) {
	p.fireExceptionCaught(ctx.nextCtx(), cause)
}

// Buffer discovery. The walk skips contexts without a buffer of the wanted
// kind. When the owning context is pinned to another executor than the
// caller, the bridge intake stands in for the real buffer.

func (p *Pipeline) hasNextInboundBytes(start *handlerContext) bool {
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		if ctx.inBytes != nil {
			return true
		}
	}
	return false
}

func (p *Pipeline) hasNextInboundMessages(start *handlerContext) bool {
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		if ctx.inMsgs != nil {
			return true
		}
	}
	return false
}

func (p *Pipeline) hasNextOutboundBytes(start *handlerContext) bool {
	for ctx := start; ctx != nil; ctx = ctx.prevCtx() {
		if ctx.outBytes != nil {
			return true
		}
	}
	return false
}

func (p *Pipeline) hasNextOutboundMessages(start *handlerContext) bool {
	for ctx := start; ctx != nil; ctx = ctx.prevCtx() {
		if ctx.outMsgs != nil {
			return true
		}
	}
	return false
}

func (p *Pipeline) nextInboundBytes(start *handlerContext) api.Buf {
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		if ctx.inBytes == nil {
			continue
		}
		if ctx.executorOrLoop().InLoop() {
			return ctx.inBytes
		}
		return ctx.streamBridgeIn().Intake()
	}
	panic(errors.Wrap(api.ErrNoBuffer, "no next inbound byte buffer"))
}

func (p *Pipeline) nextInboundMessages(start *handlerContext) api.MsgQueue {
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		if ctx.inMsgs == nil {
			continue
		}
		if ctx.executorOrLoop().InLoop() {
			return ctx.inMsgs
		}
		return ctx.msgBridgeIn().Intake()
	}
	panic(errors.Wrap(api.ErrNoBuffer, "no next inbound message buffer"))
}

func (p *Pipeline) nextOutboundBytes(start *handlerContext) api.Buf {
	for ctx := start; ctx != nil; ctx = ctx.prevCtx() {
		if ctx.outBytes == nil {
			continue
		}
		if ctx.executorOrLoop().InLoop() {
			return ctx.outBytes
		}
		return ctx.streamBridgeOut().Intake()
	}
	panic(errors.Wrap(api.ErrNoBuffer, "no next outbound byte buffer"))
}

func (p *Pipeline) nextOutboundMessages(start *handlerContext) api.MsgQueue {
	for ctx := start; ctx != nil; ctx = ctx.prevCtx() {
		if ctx.outMsgs == nil {
			continue
		}
		if ctx.executorOrLoop().InLoop() {
			return ctx.outMsgs
		}
		return ctx.msgBridgeOut().Intake()
	}
	panic(errors.Wrap(api.ErrNoBuffer, "no next outbound message buffer"))
}

// Inbound events fired from the head.

func (p *Pipeline) FireChannelRegistered() {
	if ctx := nextContext(p.head, api.CapState); ctx != nil {
		p.fireChannelRegistered(ctx)
	}
}

func (p *Pipeline) FireChannelUnregistered() {
	if ctx := nextContext(p.head, api.CapState); ctx != nil {
		p.fireChannelUnregistered(ctx)
	}
}

func (p *Pipeline) FireChannelActive() {
	if ctx := nextContext(p.head, api.CapState); ctx != nil {
		p.fireChannelActive(ctx)
	}
}

func (p *Pipeline) FireChannelInactive() {
	if ctx := nextContext(p.head, api.CapState); ctx != nil {
		p.fireChannelInactive(ctx)
	}
}

// FireInboundBufferUpdated announces new bytes in the head buffer. The head
// sentinel relays them into the first user inbound buffer.
func (p *Pipeline) FireInboundBufferUpdated() {
	p.stats.InboundEvent("inbound")
	p.fireInboundBufferUpdated(p.head)
}

func (p *Pipeline) FireExceptionCaught(cause error) {
	p.fireExceptionCaught(p.head, cause)
}

func (p *Pipeline) FireUserEvent(ev any) {
	p.fireUserEvent(p.head, ev)
}

func (p *Pipeline) fireChannelRegistered(ctx *handlerContext) {
	p.stats.InboundEvent("registered")
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			return
		}
		p.guard(ctx, func() error {
			return ctx.handler.(api.StateHandler).ChannelRegistered(ctx)
		})
	})
}

func (p *Pipeline) fireChannelUnregistered(ctx *handlerContext) {
	p.stats.InboundEvent("unregistered")
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			return
		}
		p.guard(ctx, func() error {
			return ctx.handler.(api.StateHandler).ChannelUnregistered(ctx)
		})
	})
}

func (p *Pipeline) fireChannelActive(ctx *handlerContext) {
	p.stats.InboundEvent("active")
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			return
		}
		p.guard(ctx, func() error {
			return ctx.handler.(api.StateHandler).ChannelActive(ctx)
		})
	})
}

func (p *Pipeline) fireChannelInactive(ctx *handlerContext) {
	p.stats.InboundEvent("inactive")
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			return
		}
		p.guard(ctx, func() error {
			return ctx.handler.(api.StateHandler).ChannelInactive(ctx)
		})
	})
}

// fireInboundBufferUpdated drains ctx's bridges into its local inbound
// buffer, invokes the handler, then discards fully-read bytes to bound
// memory.
func (p *Pipeline) fireInboundBufferUpdated(ctx *handlerContext) {
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			return
		}
		ctx.flushBridges()
		p.guard(ctx, func() error {
			return ctx.handler.(api.StateHandler).InboundUpdated(ctx)
		})
		if buf := ctx.inBytes; buf != nil && !buf.Readable() {
			buf.DiscardReadBytes()
		}
	})
}

// fireExceptionCaught walks forward from start to the first context whose
// handler can observe exceptions. A cause reaching the end of the chain is
// logged and dropped.
func (p *Pipeline) fireExceptionCaught(start *handlerContext, cause error) {
	p.stats.InboundEvent("exception")
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		eh, ok := ctx.handler.(api.ExceptionHandler)
		if !ok {
			continue
		}
		target := ctx
		p.execute(target.executorOrLoop(), func() {
			if target.removed.Load() {
				// Removed between dispatch and delivery; keep routing.
				p.fireExceptionCaught(target.nextCtx(), cause)
				return
			}
			defer func() {
				if r := recover(); r != nil {
					p.logTerminalException(panicError(r))
				}
			}()
			if err := eh.ExceptionCaught(target, cause); err != nil {
				p.log.Warn("exception handler failed",
					zap.String("handler", target.name), zap.Error(err))
			}
		})
		return
	}
	p.logTerminalException(cause)
}

func (p *Pipeline) logTerminalException(cause error) {
	p.log.Error("exception reached the end of the pipeline; discarding",
		zap.String("channel", p.channel.ID()), zap.Error(cause))
}

// fireUserEvent walks forward from start to the first context whose handler
// observes user events. Unconsumed events are dropped.
func (p *Pipeline) fireUserEvent(start *handlerContext, ev any) {
	p.stats.InboundEvent("user")
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		uh, ok := ctx.handler.(api.UserEventHandler)
		if !ok {
			continue
		}
		target := ctx
		p.execute(target.executorOrLoop(), func() {
			if target.removed.Load() {
				p.fireUserEvent(target.nextCtx(), ev)
				return
			}
			p.guard(target, func() error {
				return uh.UserEventTriggered(target, ev)
			})
		})
		return
	}
}

// Outbound operations, each delivered on the owning context's executor.

func (p *Pipeline) Bind(addr net.Addr, f api.Future) api.Future {
	return p.tail.Bind(addr, f)
}

func (p *Pipeline) Connect(remote, local net.Addr, f api.Future) api.Future {
	return p.tail.Connect(remote, local, f)
}

func (p *Pipeline) Disconnect(f api.Future) api.Future { return p.tail.Disconnect(f) }

func (p *Pipeline) Close(f api.Future) api.Future { return p.tail.Close(f) }

func (p *Pipeline) Deregister(f api.Future) api.Future { return p.tail.Deregister(f) }

func (p *Pipeline) Flush(f api.Future) api.Future { return p.tail.Flush(f) }

func (p *Pipeline) Write(msg any, f api.Future) api.Future { return p.tail.Write(msg, f) }

func (p *Pipeline) bind(ctx *handlerContext, addr net.Addr, f api.Future) api.Future {
	p.stats.OutboundOp("bind")
	p.execute(ctx.executorOrLoop(), func() {
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Bind(ctx, addr, f)
		})
	})
	return f
}

func (p *Pipeline) connect(ctx *handlerContext, remote, local net.Addr, f api.Future) api.Future {
	p.stats.OutboundOp("connect")
	p.execute(ctx.executorOrLoop(), func() {
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Connect(ctx, remote, local, f)
		})
	})
	return f
}

func (p *Pipeline) disconnect(ctx *handlerContext, f api.Future) api.Future {
	p.stats.OutboundOp("disconnect")
	p.execute(ctx.executorOrLoop(), func() {
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Disconnect(ctx, f)
		})
	})
	return f
}

func (p *Pipeline) close(ctx *handlerContext, f api.Future) api.Future {
	p.stats.OutboundOp("close")
	p.execute(ctx.executorOrLoop(), func() {
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Close(ctx, f)
		})
	})
	return f
}

func (p *Pipeline) deregister(ctx *handlerContext, f api.Future) api.Future {
	p.stats.OutboundOp("deregister")
	p.execute(ctx.executorOrLoop(), func() {
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Deregister(ctx, f)
		})
	})
	return f
}

// flush drains ctx's bridges and invokes its operation handler. The caller
// already filled ctx's bridges on the producer executor.
func (p *Pipeline) flush(ctx *handlerContext, f api.Future) api.Future {
	p.stats.OutboundOp("flush")
	p.execute(ctx.executorOrLoop(), func() {
		if ctx.removed.Load() {
			if prev := prevContext(ctx.prevCtx(), api.CapOperation); prev != nil {
				p.flush(prev, f)
				return
			}
			f.Fail(errors.Wrap(api.ErrNoSuchContext, "flush target removed"))
			return
		}
		ctx.flushBridges()
		p.guardOp(ctx, f, func() error {
			return ctx.handler.(api.OperationHandler).Flush(ctx, f)
		})
		if buf := ctx.outBytes; buf != nil && !buf.Readable() {
			buf.DiscardReadBytes()
		}
	})
	return f
}

// write parks msg in the closest outbound buffer below start and flushes
// that context. The hop onto the owner's executor makes the buffer mutation
// safe without a bridge.
func (p *Pipeline) write(start *handlerContext, msg any, f api.Future) api.Future {
	p.stats.OutboundOp("write")
	target := start
	for target != nil && target.outBytes == nil && target.outMsgs == nil {
		target = target.prevCtx()
	}
	if target == nil {
		f.Fail(errors.Wrap(api.ErrNoBuffer, "no outbound buffer below write origin"))
		return f
	}
	p.execute(target.executorOrLoop(), func() {
		if target.removed.Load() {
			f.Fail(errors.Wrap(api.ErrNoSuchContext, "write target removed"))
			return
		}
		if target.outMsgs != nil {
			target.outMsgs.Add(msg)
		} else {
			switch m := msg.(type) {
			case api.Buf:
				target.outBytes.WriteBytesBuf(m)
			case []byte:
				target.outBytes.WriteBytes(m)
			default:
				err := errors.Newf("write: message type %T needs an outbound message buffer", msg)
				f.Fail(err)
				p.notifyHandlerException(target, err)
				return
			}
		}
		p.flush(target, f)
	})
	return f
}
