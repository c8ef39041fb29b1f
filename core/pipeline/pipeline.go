// File: core/pipeline/pipeline.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pipeline topology: the doubly-linked context list between the head and
// tail sentinels. List mutations hold the pipeline lock and never overlap
// with each other; link reads on the dispatch path go through atomics.

package pipeline

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

// Pipeline is the default api.Pipeline implementation.
type Pipeline struct {
	mu       sync.Mutex
	channel  api.Channel
	head     *handlerContext
	tail     *handlerContext
	byName   map[string]*handlerContext
	children map[api.ExecutorGroup]api.Executor

	alloc     buffer.Allocator
	log       *zap.Logger
	stats     Stats
	bridgeCap int
}

func newPipeline(ch *Channel, cfg channelConfig) *Pipeline {
	p := &Pipeline{
		channel:   ch,
		byName:    make(map[string]*handlerContext),
		children:  make(map[api.ExecutorGroup]api.Executor),
		alloc:     cfg.alloc,
		log:       cfg.log,
		stats:     cfg.stats,
		bridgeCap: cfg.bridgeCap,
	}

	head, err := newContext(p, nil, "head", newHeadHandler(ch, p, cfg.headEstimate))
	if err != nil {
		// The sentinels allocate plain buffers; this cannot fail.
		panic(err)
	}
	tail, err := newContext(p, nil, "tail", newTailHandler(p))
	if err != nil {
		panic(err)
	}
	head.next.Store(tail)
	tail.prev.Store(head)
	p.head = head
	p.tail = tail
	return p
}

func (p *Pipeline) Channel() api.Channel { return p.channel }

// childExecutor pins one stable child executor per group for this channel.
// Callers hold p.mu or run before the pipeline is shared.
func (p *Pipeline) childExecutor(group api.ExecutorGroup) api.Executor {
	if ex, ok := p.children[group]; ok {
		return ex
	}
	ex := group.Next()
	p.children[group] = ex
	return ex
}

func (p *Pipeline) generateName(h api.Handler) string {
	return fmt.Sprintf("%T-%s", h, uuid.NewString()[:8])
}

func (p *Pipeline) checkName(name string) error {
	if _, dup := p.byName[name]; dup {
		return errors.Wrapf(api.ErrDuplicateName, "name %q", name)
	}
	return nil
}

// splice links ctx between prev and next and runs the lifecycle hooks.
func (p *Pipeline) splice(prev, next, ctx *handlerContext) {
	callLifecycle(ctx, beforeAdd)
	ctx.prev.Store(prev)
	ctx.next.Store(next)
	prev.next.Store(ctx)
	next.prev.Store(ctx)
	p.byName[ctx.name] = ctx
	callLifecycle(ctx, afterAdd)
}

func (p *Pipeline) AddFirst(group api.ExecutorGroup, name string, h api.Handler) error {
	return p.add(group, name, h, func(ctx *handlerContext) {
		p.splice(p.head, p.head.nextCtx(), ctx)
	})
}

func (p *Pipeline) AddLast(group api.ExecutorGroup, name string, h api.Handler) error {
	return p.add(group, name, h, func(ctx *handlerContext) {
		p.splice(p.tail.prevCtx(), p.tail, ctx)
	})
}

func (p *Pipeline) AddBefore(group api.ExecutorGroup, base, name string, h api.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	at, ok := p.byName[base]
	if !ok {
		return errors.Wrapf(api.ErrNoSuchContext, "base %q", base)
	}
	return p.addLocked(group, name, h, func(ctx *handlerContext) {
		p.splice(at.prevCtx(), at, ctx)
	})
}

func (p *Pipeline) AddAfter(group api.ExecutorGroup, base, name string, h api.Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	at, ok := p.byName[base]
	if !ok {
		return errors.Wrapf(api.ErrNoSuchContext, "base %q", base)
	}
	return p.addLocked(group, name, h, func(ctx *handlerContext) {
		p.splice(at, at.nextCtx(), ctx)
	})
}

func (p *Pipeline) add(group api.ExecutorGroup, name string, h api.Handler, place func(*handlerContext)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(group, name, h, place)
}

func (p *Pipeline) addLocked(group api.ExecutorGroup, name string, h api.Handler, place func(*handlerContext)) error {
	if name == "" {
		name = p.generateName(h)
	}
	if err := p.checkName(name); err != nil {
		return err
	}
	ctx, err := newContext(p, group, name, h)
	if err != nil {
		return err
	}
	place(ctx)
	return nil
}

// Remove unlinks the named context. The context is marked removed before it
// is unlinked, so a task already queued on its executor finds the flag and
// drops the event; its bridges are drained and buffers cleared exactly once.
func (p *Pipeline) Remove(name string) (api.Handler, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ctx, ok := p.byName[name]
	if !ok {
		return nil, errors.Wrapf(api.ErrNoSuchContext, "name %q", name)
	}
	p.removeLocked(ctx)
	return ctx.handler, nil
}

func (p *Pipeline) removeLocked(ctx *handlerContext) {
	callLifecycle(ctx, beforeRemove)
	ctx.removed.Store(true)
	prev, next := ctx.prevCtx(), ctx.nextCtx()
	prev.next.Store(next)
	next.prev.Store(prev)
	delete(p.byName, ctx.name)
	ctx.releaseBuffers()
	callLifecycle(ctx, afterRemove)
}

// Replace swaps the named handler for a new one in place and returns the old
// handler.
func (p *Pipeline) Replace(oldName, newName string, h api.Handler) (api.Handler, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	old, ok := p.byName[oldName]
	if !ok {
		return nil, errors.Wrapf(api.ErrNoSuchContext, "name %q", oldName)
	}
	if newName == "" {
		newName = p.generateName(h)
	}
	if newName != oldName {
		if err := p.checkName(newName); err != nil {
			return nil, err
		}
	}
	ctx, err := newContext(p, nil, newName, h)
	if err != nil {
		return nil, err
	}
	ctx.executor = old.executor
	callLifecycle(old, beforeRemove)
	old.removed.Store(true)
	p.splice(old.prevCtx(), old.nextCtx(), ctx)
	delete(p.byName, oldName)
	old.releaseBuffers()
	callLifecycle(old, afterRemove)
	return old.handler, nil
}

func (p *Pipeline) Get(name string) api.Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx, ok := p.byName[name]; ok {
		return ctx.handler
	}
	return nil
}

func (p *Pipeline) Context(name string) api.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx, ok := p.byName[name]; ok {
		return ctx
	}
	return nil
}

// Names lists user handlers in chain order; sentinels are not included.
func (p *Pipeline) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var chain []*handlerContext
	for ctx := p.head.nextCtx(); ctx != nil && ctx != p.tail; ctx = ctx.nextCtx() {
		chain = append(chain, ctx)
	}
	return lo.Map(chain, func(ctx *handlerContext, _ int) string { return ctx.name })
}

// InboundBytes is the transport entry point: the head sentinel's inbound
// byte buffer. Writers must be on the channel loop.
func (p *Pipeline) InboundBytes() api.Buf { return p.head.inBytes }

// lifecycle hook dispatch

type lifecyclePhase int

const (
	beforeAdd lifecyclePhase = iota
	afterAdd
	beforeRemove
	afterRemove
)

func callLifecycle(ctx *handlerContext, phase lifecyclePhase) {
	lh, ok := ctx.handler.(api.LifecycleHandler)
	if !ok {
		return
	}
	var err error
	switch phase {
	case beforeAdd:
		err = lh.BeforeAdd(ctx)
	case afterAdd:
		err = lh.AfterAdd(ctx)
	case beforeRemove:
		err = lh.BeforeRemove(ctx)
	case afterRemove:
		err = lh.AfterRemove(ctx)
	}
	if err != nil {
		ctx.pipeline.log.Warn("lifecycle hook failed",
			zap.String("handler", ctx.name), zap.Error(err))
	}
}

// walks

func nextContext(start *handlerContext, want api.Capability) *handlerContext {
	for ctx := start; ctx != nil; ctx = ctx.nextCtx() {
		if ctx.caps.Has(want) {
			return ctx
		}
	}
	return nil
}

func prevContext(start *handlerContext, want api.Capability) *handlerContext {
	for ctx := start; ctx != nil; ctx = ctx.prevCtx() {
		if ctx.caps.Has(want) {
			return ctx
		}
	}
	return nil
}
