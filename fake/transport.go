// File: fake/transport.go
// Package fake provides in-memory test doubles for the pipeline core.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"net"
	"sync"
)

// Transport records everything the pipeline head writes to it.
type Transport struct {
	mu       sync.Mutex
	chunks   [][]byte
	closed   bool
	writeErr error
}

// NewTransport returns an open recording transport.
func NewTransport() *Transport { return &Transport{} }

// Write records p. Returns net.ErrClosed once the transport is closed, or
// the forced error set by FailWrites.
func (t *Transport) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, net.ErrClosed
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	t.chunks = append(t.chunks, chunk)
	return len(p), nil
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// FailWrites forces subsequent writes to fail with err.
func (t *Transport) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

func (t *Transport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Chunks returns the recorded writes in order.
func (t *Transport) Chunks() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.chunks))
	copy(out, t.chunks)
	return out
}

// Written concatenates every recorded write.
func (t *Transport) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []byte
	for _, c := range t.chunks {
		out = append(out, c...)
	}
	return out
}
