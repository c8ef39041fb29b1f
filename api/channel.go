// File: api/channel.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel and transport collaborators. The core never implements a concrete
// socket; it drives whatever Transport the channel was built around.

package api

// Transport is the byte sink/lifecycle surface at the head of the pipeline.
// Implementations are supplied by transport packages or test fakes.
type Transport interface {
	// Write pushes outbound bytes toward the peer.
	Write(p []byte) (int, error)
	Close() error
}

// Channel is one connection: an identity, an event loop, and a pipeline.
type Channel interface {
	ID() string
	// Loop is the channel's default executor; contexts added without an
	// explicit group are pinned to it.
	Loop() Executor
	Pipeline() Pipeline

	IsRegistered() bool
	IsActive() bool
	IsOpen() bool

	NewFuture() Future
	NewSucceededFuture() Future
	NewFailedFuture(cause error) Future
}
