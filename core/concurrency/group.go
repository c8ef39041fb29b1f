// File: core/concurrency/group.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"runtime"
	"sync/atomic"

	"github.com/momentics/hioload-pipeline/api"
)

// LoopGroup owns a fixed set of Loops and deals them out round-robin. A
// pipeline asks the group once per channel and pins the answer, so all
// handlers added with the same group share one executor.
type LoopGroup struct {
	loops []*Loop
	next  atomic.Uint64
}

// NewLoopGroup starts n loops; n <= 0 defaults to the CPU count.
func NewLoopGroup(n int, opts ...LoopOption) *LoopGroup {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	g := &LoopGroup{loops: make([]*Loop, n)}
	for i := range g.loops {
		g.loops[i] = NewLoop(opts...)
	}
	return g
}

// Next returns the next loop in round-robin order.
func (g *LoopGroup) Next() api.Executor {
	i := g.next.Add(1) - 1
	return g.loops[i%uint64(len(g.loops))]
}

// Close stops every loop in the group.
func (g *LoopGroup) Close() {
	for _, l := range g.loops {
		l.Close()
	}
}
