// File: api/context.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-stage context contract: identity, executor pin, local buffers, and the
// event/operation surface user handlers program against.

package api

import "net"

// Context binds a handler into a pipeline. One context exists per added
// handler; its identity and executor never change after registration.
type Context interface {
	Name() string
	Handler() Handler
	Channel() Channel
	Pipeline() Pipeline
	Executor() Executor
	Capabilities() Capability

	// Attr and SetAttr access the context-scoped attribute map.
	Attr(key string) (any, bool)
	SetAttr(key string, value any)

	// Local buffer access. The accessors panic with ErrNoBuffer when the
	// handler never declared a buffer of the requested kind.
	HasInboundBytes() bool
	HasInboundMessages() bool
	HasOutboundBytes() bool
	HasOutboundMessages() bool
	InboundBytes() Buf
	InboundMessages() MsgQueue
	OutboundBytes() Buf
	OutboundMessages() MsgQueue

	// Next-buffer discovery routes through the pipeline: inbound variants
	// search forward, outbound variants search backward. When the owning
	// context is pinned to a different executor, the returned buffer is the
	// producer-side intake of that context's bridge.
	HasNextInboundBytes() bool
	HasNextInboundMessages() bool
	HasNextOutboundBytes() bool
	HasNextOutboundMessages() bool
	NextInboundBytes() Buf
	NextInboundMessages() MsgQueue
	NextOutboundBytes() Buf
	NextOutboundMessages() MsgQueue

	// Inbound event propagation, travelling toward the tail.
	FireChannelRegistered()
	FireChannelUnregistered()
	FireChannelActive()
	FireChannelInactive()
	FireInboundBufferUpdated()
	FireExceptionCaught(cause error)
	FireUserEvent(ev any)

	// Outbound operations, travelling toward the transport. A nil future
	// allocates a fresh one; the future passed or created is returned.
	Bind(addr net.Addr, f Future) Future
	Connect(remote, local net.Addr, f Future) Future
	Disconnect(f Future) Future
	Close(f Future) Future
	Deregister(f Future) Future
	Flush(f Future) Future
	Write(msg any, f Future) Future

	NewFuture() Future
}
