// File: codec/encoder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outbound encoder skeletons. Encoding happens on flush: queued outbound
// messages are drained, encoded into the next-backward buffer, and the
// flush continues toward the transport only when something was produced.

package codec

import (
	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

// StreamEncodeFunc renders one outbound message into out.
type StreamEncodeFunc func(ctx api.Context, msg any, out api.Buf) error

// MessageToStreamEncoder turns outbound messages into bytes.
type MessageToStreamEncoder struct {
	api.OperationBase
	encode StreamEncodeFunc
	accept func(msg any) bool
}

// NewMessageToStreamEncoder builds a stream encoder; a nil accept takes
// every message, anything rejected passes through to the next outbound
// message buffer.
func NewMessageToStreamEncoder(encode StreamEncodeFunc, accept func(any) bool) *MessageToStreamEncoder {
	return &MessageToStreamEncoder{encode: encode, accept: accept}
}

func (e *MessageToStreamEncoder) NewOutboundHolder(ctx api.Context) (api.Holder, error) {
	return api.MessagesHolder(buffer.NewMsgQueue()), nil
}

func (e *MessageToStreamEncoder) Flush(ctx api.Context, f api.Future) error {
	in := ctx.OutboundMessages()
	out := ctx.NextOutboundBytes()
	oldSize := out.ReadableBytes()
	notify := false
	for {
		msg, ok := in.Poll()
		if !ok {
			break
		}
		if e.accept != nil && !e.accept(msg) {
			ctx.NextOutboundMessages().Add(msg)
			notify = true
			continue
		}
		if err := e.encode(ctx, msg, out); err != nil {
			ctx.FireExceptionCaught(wrapEncode(err))
		}
	}
	if out.ReadableBytes() > oldSize || notify {
		ctx.Flush(f)
		return nil
	}
	f.Succeed()
	return nil
}

// MsgEncodeFunc transforms one outbound message.
type MsgEncodeFunc func(ctx api.Context, msg any) (any, error)

// MessageToMessageEncoder transforms outbound messages one at a time on
// flush.
type MessageToMessageEncoder struct {
	api.OperationBase
	encode MsgEncodeFunc
	accept func(msg any) bool
}

// NewMessageToMessageEncoder builds a message encoder; a nil accept takes
// every message.
func NewMessageToMessageEncoder(encode MsgEncodeFunc, accept func(any) bool) *MessageToMessageEncoder {
	return &MessageToMessageEncoder{encode: encode, accept: accept}
}

func (e *MessageToMessageEncoder) NewOutboundHolder(ctx api.Context) (api.Holder, error) {
	return api.MessagesHolder(buffer.NewMsgQueue()), nil
}

func (e *MessageToMessageEncoder) Flush(ctx api.Context, f api.Future) error {
	in := ctx.OutboundMessages()
	out := ctx.NextOutboundMessages()
	notify := false
	for {
		msg, ok := in.Poll()
		if !ok {
			break
		}
		if e.accept != nil && !e.accept(msg) {
			out.Add(msg)
			notify = true
			continue
		}
		encoded, err := e.encode(ctx, msg)
		if err != nil {
			ctx.FireExceptionCaught(wrapEncode(err))
			continue
		}
		if encoded == nil {
			continue
		}
		out.Add(encoded)
		notify = true
	}
	if notify {
		ctx.Flush(f)
		return nil
	}
	f.Succeed()
	return nil
}
