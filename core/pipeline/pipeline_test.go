// File: core/pipeline/pipeline_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
	"github.com/momentics/hioload-pipeline/core/pipeline"
	"github.com/momentics/hioload-pipeline/fake"
)

// relay forwards inbound bytes unchanged.
type relay struct {
	api.StateBase
	buf     api.Buf
	updates int
}

func (r *relay) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	r.buf = buffer.Dynamic(0)
	return api.BytesHolder(r.buf), nil
}

func (r *relay) InboundUpdated(ctx api.Context) error {
	r.updates++
	in := ctx.InboundBytes()
	if in.Readable() {
		ctx.NextInboundBytes().WriteBytesBuf(in)
		ctx.FireInboundBufferUpdated()
	}
	return nil
}

// brokenHolder fails buffer creation at registration.
type brokenHolder struct {
	api.StateBase
}

func (b *brokenHolder) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.Holder{}, errors.New("no buffer for you")
}

// newBareChannel is a channel without the capture sink, for topology tests.
func newBareChannel() *pipeline.Channel {
	return pipeline.NewChannel(fake.NewLoop(), fake.NewTransport())
}

func TestTopologyOrdering(t *testing.T) {
	p := newBareChannel().Pipeline()

	require.NoError(t, p.AddLast(nil, "b", &relay{}))
	require.NoError(t, p.AddFirst(nil, "a", &relay{}))
	require.NoError(t, p.AddBefore(nil, "b", "a2", &relay{}))
	require.NoError(t, p.AddAfter(nil, "b", "c", &relay{}))

	assert.Equal(t, []string{"a", "a2", "b", "c"}, p.Names())
}

func TestDuplicateNamesRejected(t *testing.T) {
	p := newBareChannel().Pipeline()

	require.NoError(t, p.AddLast(nil, "dup", &relay{}))
	assert.ErrorIs(t, p.AddLast(nil, "dup", &relay{}), api.ErrDuplicateName)
}

func TestLookupAndMissingContexts(t *testing.T) {
	p := newBareChannel().Pipeline()

	h := &relay{}
	require.NoError(t, p.AddLast(nil, "x", h))
	assert.Same(t, api.Handler(h), p.Get("x"))
	require.NotNil(t, p.Context("x"))
	assert.Equal(t, "x", p.Context("x").Name())

	assert.Nil(t, p.Get("missing"))
	assert.Nil(t, p.Context("missing"))
	_, err := p.Remove("missing")
	assert.ErrorIs(t, err, api.ErrNoSuchContext)
	err = p.AddBefore(nil, "missing", "y", &relay{})
	assert.ErrorIs(t, err, api.ErrNoSuchContext)
}

func TestSentinelsAreHidden(t *testing.T) {
	p := newBareChannel().Pipeline()
	assert.Empty(t, p.Names())
	assert.Nil(t, p.Get("head"))
	assert.Nil(t, p.Get("tail"))
}

func TestReplaceSwapsInPlace(t *testing.T) {
	p := newBareChannel().Pipeline()

	oldH := &relay{}
	require.NoError(t, p.AddLast(nil, "stage", oldH))
	newH := &relay{}
	got, err := p.Replace("stage", "stage2", newH)
	require.NoError(t, err)
	assert.Same(t, api.Handler(oldH), got)
	assert.Equal(t, []string{"stage2"}, p.Names())
	assert.Nil(t, p.Get("stage"))
	assert.Same(t, api.Handler(newH), p.Get("stage2"))
}

func TestHolderFailureAbortsInsertion(t *testing.T) {
	p := newBareChannel().Pipeline()

	err := p.AddLast(nil, "broken", &brokenHolder{})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrPipeline)
	assert.Nil(t, p.Get("broken"), "failed insertions leave no trace")
}

func TestRemovedContextGetsNoEvents(t *testing.T) {
	stage := &relay{}
	ch := fake.NewStreamChannel(stage)
	p := ch.Pipeline()

	ch.WriteInbound([]byte{1, 2})
	require.Equal(t, 1, stage.updates)
	assert.Equal(t, []byte{1, 2}, ch.InboundBytes())

	_, err := p.Remove("handler-0")
	require.NoError(t, err)

	ch.WriteInbound([]byte{3, 4})
	assert.Equal(t, 1, stage.updates, "no event reaches a removed context")
	assert.Equal(t, []byte{3, 4}, ch.InboundBytes(), "traffic flows around the removed stage")
	assert.Equal(t, 0, stage.buf.ReadableBytes(), "buffers are released on removal")
}

func TestCapabilitiesDriveTraversal(t *testing.T) {
	p := newBareChannel().Pipeline()
	require.NoError(t, p.AddLast(nil, "stage", &relay{}))

	ctx := p.Context("stage")
	assert.True(t, ctx.Capabilities().Has(api.CapState))
	assert.True(t, ctx.Capabilities().Has(api.CapInbound))
	assert.False(t, ctx.Capabilities().Has(api.CapOutbound))
	assert.False(t, ctx.Capabilities().Has(api.CapOperation))
	assert.True(t, ctx.HasInboundBytes())
	assert.False(t, ctx.HasInboundMessages())
	assert.Panics(t, func() { ctx.OutboundBytes() }, "undeclared buffers are an error to query")
}

func TestContextAttributes(t *testing.T) {
	p := newBareChannel().Pipeline()
	require.NoError(t, p.AddLast(nil, "stage", &relay{}))

	ctx := p.Context("stage")
	_, ok := ctx.Attr("k")
	assert.False(t, ok)
	ctx.SetAttr("k", 42)
	v, ok := ctx.Attr("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestGeneratedNamesAreUnique(t *testing.T) {
	p := newBareChannel().Pipeline()
	require.NoError(t, p.AddLast(nil, "", &relay{}))
	require.NoError(t, p.AddLast(nil, "", &relay{}))
	names := p.Names()
	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1])
}
