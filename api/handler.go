// File: api/handler.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handler contracts. A handler's capability set is derived from the
// interfaces it implements; pipeline traversal filters on that set instead
// of repeated type assertions.

package api

import (
	"net"
	"strings"
)

// Capability tags the roles a handler plays inside the pipeline.
type Capability uint8

const (
	// CapState receives lifecycle transitions and inbound-buffer updates.
	CapState Capability = 1 << iota
	// CapInbound owns a local inbound buffer.
	CapInbound
	// CapOutbound owns a local outbound buffer.
	CapOutbound
	// CapOperation intercepts outbound operations (bind/connect/.../flush).
	CapOperation
)

// Has reports whether all bits of o are present in c.
func (c Capability) Has(o Capability) bool { return c&o == o }

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	if c.Has(CapState) {
		parts = append(parts, "state")
	}
	if c.Has(CapInbound) {
		parts = append(parts, "inbound")
	}
	if c.Has(CapOutbound) {
		parts = append(parts, "outbound")
	}
	if c.Has(CapOperation) {
		parts = append(parts, "operation")
	}
	return strings.Join(parts, "|")
}

// Handler is the marker for user-supplied pipeline stages. Capabilities are
// discovered through the sub-interfaces below.
type Handler interface{}

// CapabilitiesOf computes the capability set of h.
func CapabilitiesOf(h Handler) Capability {
	var c Capability
	if _, ok := h.(StateHandler); ok {
		c |= CapState
	}
	if _, ok := h.(InboundHandler); ok {
		c |= CapInbound
	}
	if _, ok := h.(OutboundHandler); ok {
		c |= CapOutbound
	}
	if _, ok := h.(OperationHandler); ok {
		c |= CapOperation
	}
	return c
}

// StateHandler observes per-channel lifecycle transitions. InboundUpdated is
// the data-path notification: the context's inbound buffer gained content.
type StateHandler interface {
	ChannelRegistered(ctx Context) error
	ChannelUnregistered(ctx Context) error
	ChannelActive(ctx Context) error
	ChannelInactive(ctx Context) error
	InboundUpdated(ctx Context) error
}

// InboundHandler owns a local inbound buffer, created once at registration.
type InboundHandler interface {
	StateHandler
	NewInboundHolder(ctx Context) (Holder, error)
}

// OperationHandler intercepts outbound operations travelling toward the
// transport. The future completes when the operation reaches its terminal
// outcome.
type OperationHandler interface {
	Bind(ctx Context, addr net.Addr, f Future) error
	Connect(ctx Context, remote, local net.Addr, f Future) error
	Disconnect(ctx Context, f Future) error
	Close(ctx Context, f Future) error
	Deregister(ctx Context, f Future) error
	Flush(ctx Context, f Future) error
}

// OutboundHandler owns a local outbound buffer, created once at registration.
type OutboundHandler interface {
	OperationHandler
	NewOutboundHolder(ctx Context) (Holder, error)
}

// ExceptionHandler is optional: contexts whose handler implements it receive
// routed exceptions; others pass them along unchanged.
type ExceptionHandler interface {
	ExceptionCaught(ctx Context, cause error) error
}

// UserEventHandler is optional: contexts whose handler implements it receive
// user events; others pass them along unchanged.
type UserEventHandler interface {
	UserEventTriggered(ctx Context, ev any) error
}

// LifecycleHandler is optional: hooks around pipeline insertion and removal.
type LifecycleHandler interface {
	BeforeAdd(ctx Context) error
	AfterAdd(ctx Context) error
	BeforeRemove(ctx Context) error
	AfterRemove(ctx Context) error
}

// StateBase supplies pass-through StateHandler defaults. Embed it and
// override the callbacks of interest.
type StateBase struct{}

func (StateBase) ChannelRegistered(ctx Context) error {
	ctx.FireChannelRegistered()
	return nil
}

func (StateBase) ChannelUnregistered(ctx Context) error {
	ctx.FireChannelUnregistered()
	return nil
}

func (StateBase) ChannelActive(ctx Context) error {
	ctx.FireChannelActive()
	return nil
}

func (StateBase) ChannelInactive(ctx Context) error {
	ctx.FireChannelInactive()
	return nil
}

func (StateBase) InboundUpdated(ctx Context) error {
	ctx.FireInboundBufferUpdated()
	return nil
}

// OperationBase supplies pass-through OperationHandler defaults.
type OperationBase struct{}

func (OperationBase) Bind(ctx Context, addr net.Addr, f Future) error {
	ctx.Bind(addr, f)
	return nil
}

func (OperationBase) Connect(ctx Context, remote, local net.Addr, f Future) error {
	ctx.Connect(remote, local, f)
	return nil
}

func (OperationBase) Disconnect(ctx Context, f Future) error {
	ctx.Disconnect(f)
	return nil
}

func (OperationBase) Close(ctx Context, f Future) error {
	ctx.Close(f)
	return nil
}

func (OperationBase) Deregister(ctx Context, f Future) error {
	ctx.Deregister(f)
	return nil
}

func (OperationBase) Flush(ctx Context, f Future) error {
	ctx.Flush(f)
	return nil
}
