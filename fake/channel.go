// File: fake/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Embedded channels: a pipeline wired to the synchronous loop and the
// recording transport, with a capturing sink appended after the user
// handlers. The message variant captures decoded inbound messages, the
// stream variant captures inbound bytes.

package fake

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
	"github.com/momentics/hioload-pipeline/core/pipeline"
)

// Channel is an in-memory channel for exercising handlers end to end.
type Channel struct {
	*pipeline.Channel
	transport *Transport
	sink      *sink
}

// NewMessageChannel builds an embedded channel whose sink captures inbound
// messages. Handler registration failures panic: an embedded channel with a
// broken pipeline is useless.
func NewMessageChannel(handlers ...api.Handler) *Channel {
	return newChannel(false, handlers...)
}

// NewStreamChannel builds an embedded channel whose sink captures inbound
// bytes.
func NewStreamChannel(handlers ...api.Handler) *Channel {
	return newChannel(true, handlers...)
}

func newChannel(stream bool, handlers ...api.Handler) *Channel {
	tr := NewTransport()
	ch := pipeline.NewChannel(NewLoop(), tr, pipeline.WithLogger(zap.NewNop()))
	for i, h := range handlers {
		if err := ch.Pipeline().AddLast(nil, fmt.Sprintf("handler-%d", i), h); err != nil {
			panic(err)
		}
	}
	s := &sink{stream: stream}
	if err := ch.Pipeline().AddLast(nil, "sink", s); err != nil {
		panic(err)
	}
	ch.Register()
	ch.Activate()
	return &Channel{Channel: ch, transport: tr, sink: s}
}

// Transport exposes the recording transport at the head.
func (c *Channel) Transport() *Transport { return c.transport }

// WriteInbound pushes bytes into the head inbound buffer, as a transport
// would.
func (c *Channel) WriteInbound(p []byte) {
	c.FeedInbound(p)
}

// ReadInbound pops the oldest captured inbound message.
func (c *Channel) ReadInbound() (any, bool) { return c.sink.pollMsg() }

// InboundBytes drains and returns all captured inbound bytes.
func (c *Channel) InboundBytes() []byte { return c.sink.takeBytes() }

// ReadOutbound pops the oldest chunk the head wrote to the transport.
func (c *Channel) ReadOutbound() ([]byte, bool) {
	chunks := c.transport.Chunks()
	if len(chunks) == 0 {
		return nil, false
	}
	c.transport.mu.Lock()
	chunk := c.transport.chunks[0]
	c.transport.chunks = c.transport.chunks[1:]
	c.transport.mu.Unlock()
	return chunk, true
}

// OutboundBytes concatenates everything written to the transport so far.
func (c *Channel) OutboundBytes() []byte { return c.transport.Written() }

// WriteOutbound sends msg down the outbound chain from the tail.
func (c *Channel) WriteOutbound(msg any) api.Future {
	return c.Pipeline().Write(msg, nil)
}

// PollError pops the oldest exception that reached the sink.
func (c *Channel) PollError() error { return c.sink.pollErr() }

// sink is the capture stage appended after the user handlers.
type sink struct {
	stream bool

	mu   sync.Mutex
	msgs []any
	data []byte
	errs []error
}

func (s *sink) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	if s.stream {
		return api.BytesHolder(buffer.Dynamic(0)), nil
	}
	return api.MessagesHolder(buffer.NewMsgQueue()), nil
}

func (s *sink) ChannelRegistered(api.Context) error { return nil }
func (s *sink) ChannelUnregistered(api.Context) error { return nil }
func (s *sink) ChannelActive(api.Context) error { return nil }
func (s *sink) ChannelInactive(api.Context) error { return nil }

func (s *sink) InboundUpdated(ctx api.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream {
		in := ctx.InboundBytes()
		if n := in.ReadableBytes(); n > 0 {
			chunk := make([]byte, n)
			in.ReadBytesInto(chunk)
			s.data = append(s.data, chunk...)
		}
		return nil
	}
	in := ctx.InboundMessages()
	for {
		msg, ok := in.Poll()
		if !ok {
			return nil
		}
		s.msgs = append(s.msgs, msg)
	}
}

func (s *sink) ExceptionCaught(ctx api.Context, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, cause)
	return nil
}

func (s *sink) pollMsg() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return nil, false
	}
	msg := s.msgs[0]
	s.msgs = s.msgs[1:]
	return msg, true
}

func (s *sink) takeBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.data
	s.data = nil
	return out
}

func (s *sink) pollErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}
