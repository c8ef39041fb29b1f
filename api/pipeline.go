// File: api/pipeline.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "net"

// Pipeline is the per-channel, doubly-linked chain of handler contexts.
// Topology mutations enforce name uniqueness and are serialized with event
// dispatch.
type Pipeline interface {
	Channel() Channel

	// Topology. A nil group pins the new context to the channel loop;
	// otherwise one stable child executor per group is used for the whole
	// channel.
	AddFirst(group ExecutorGroup, name string, h Handler) error
	AddLast(group ExecutorGroup, name string, h Handler) error
	AddBefore(group ExecutorGroup, base, name string, h Handler) error
	AddAfter(group ExecutorGroup, base, name string, h Handler) error
	Remove(name string) (Handler, error)
	Replace(oldName, newName string, h Handler) (Handler, error)
	Get(name string) Handler
	Context(name string) Context
	Names() []string

	// InboundBytes is the transport's inbound entry point: the head
	// sentinel's byte buffer.
	InboundBytes() Buf

	// Inbound events fired from the head.
	FireChannelRegistered()
	FireChannelUnregistered()
	FireChannelActive()
	FireChannelInactive()
	FireInboundBufferUpdated()
	FireExceptionCaught(cause error)
	FireUserEvent(ev any)

	// Outbound operations fired from the tail. A nil future allocates one.
	Bind(addr net.Addr, f Future) Future
	Connect(remote, local net.Addr, f Future) Future
	Disconnect(f Future) Future
	Close(f Future) Future
	Deregister(f Future) Future
	Flush(f Future) Future
	Write(msg any, f Future) Future
}
