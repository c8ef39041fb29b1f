// File: core/pipeline/bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-executor handoff between adjacent contexts. A bridge is installed
// lazily, the first time a producer on one executor asks for the buffer of a
// consumer pinned to another. The producer writes into the bridge's intake
// (never the consumer's buffer), Fill snapshots the intake into the exchange
// queue on the producer executor, and Flush drains the exchange queue into
// the consumer's local buffer on the consumer executor.

package pipeline

import (
	"runtime"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
	"github.com/momentics/hioload-pipeline/core/concurrency"
)

// defaultBridgeCapacity bounds the exchange queue of a bridge in batches.
const defaultBridgeCapacity = 256

// StreamBridge carries bytes between adjacent contexts on different
// executors.
type StreamBridge struct {
	intake   api.Buf // producer-executor private
	exchange *concurrency.Queue[api.Buf]
	stats    Stats
}

func newStreamBridge(alloc buffer.Allocator, capacity int, stats Stats) *StreamBridge {
	if capacity <= 0 {
		capacity = defaultBridgeCapacity
	}
	return &StreamBridge{
		intake:   alloc.Dynamic(0),
		exchange: concurrency.NewQueue[api.Buf](capacity),
		stats:    stats,
	}
}

// Intake is the buffer handed to the producer in place of the consumer's.
func (b *StreamBridge) Intake() api.Buf { return b.intake }

// Fill snapshots all readable intake bytes into the exchange queue and
// compacts the intake. Must run on the producer executor. No-op when empty.
func (b *StreamBridge) Fill() {
	n := b.intake.ReadableBytes()
	if n == 0 {
		return
	}
	chunk := b.intake.ReadBytes(n)
	b.intake.DiscardReadBytes()
	for !b.exchange.Enqueue(chunk) {
		runtime.Gosched()
	}
	b.stats.BridgeFill("stream", n)
}

// Flush drains the exchange queue into out. Must run on the consumer
// executor.
func (b *StreamBridge) Flush(out api.Buf) {
	for {
		chunk, ok := b.exchange.Dequeue()
		if !ok {
			return
		}
		b.stats.BridgeFlush("stream", chunk.ReadableBytes())
		out.WriteBytesBuf(chunk)
	}
}

// MessageBridge carries message batches between adjacent contexts on
// different executors.
type MessageBridge struct {
	intake   api.MsgQueue // producer-executor private
	exchange *concurrency.Queue[[]any]
	stats    Stats
}

func newMessageBridge(capacity int, stats Stats) *MessageBridge {
	if capacity <= 0 {
		capacity = defaultBridgeCapacity
	}
	return &MessageBridge{
		intake:   buffer.NewMsgQueue(),
		exchange: concurrency.NewQueue[[]any](capacity),
		stats:    stats,
	}
}

// Intake is the queue handed to the producer in place of the consumer's.
func (b *MessageBridge) Intake() api.MsgQueue { return b.intake }

// Fill snapshots the intake queue into one exchange batch. Must run on the
// producer executor. No-op when empty.
func (b *MessageBridge) Fill() {
	n := b.intake.Len()
	if n == 0 {
		return
	}
	batch := make([]any, 0, n)
	for {
		msg, ok := b.intake.Poll()
		if !ok {
			break
		}
		batch = append(batch, msg)
	}
	for !b.exchange.Enqueue(batch) {
		runtime.Gosched()
	}
	b.stats.BridgeFill("message", len(batch))
}

// Flush drains exchanged batches into out in FIFO order. Must run on the
// consumer executor.
func (b *MessageBridge) Flush(out api.MsgQueue) {
	for {
		batch, ok := b.exchange.Dequeue()
		if !ok {
			return
		}
		b.stats.BridgeFlush("message", len(batch))
		for _, msg := range batch {
			out.Add(msg)
		}
	}
}
