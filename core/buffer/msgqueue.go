// File: core/buffer/msgqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message-shaped stage buffer. Single-owner FIFO; cross-executor handoff
// goes through the pipeline bridges, never through this queue directly.

package buffer

import (
	"github.com/eapache/queue"

	"github.com/momentics/hioload-pipeline/api"
)

type msgQueue struct {
	q *queue.Queue
}

// NewMsgQueue returns an unbounded FIFO message buffer.
func NewMsgQueue() api.MsgQueue {
	return &msgQueue{q: queue.New()}
}

func (m *msgQueue) Add(msg any) { m.q.Add(msg) }

func (m *msgQueue) Poll() (any, bool) {
	if m.q.Length() == 0 {
		return nil, false
	}
	return m.q.Remove(), true
}

func (m *msgQueue) Peek() (any, bool) {
	if m.q.Length() == 0 {
		return nil, false
	}
	return m.q.Peek(), true
}

func (m *msgQueue) Len() int { return m.q.Length() }
