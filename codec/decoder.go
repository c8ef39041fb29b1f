// File: codec/decoder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Inbound decoder skeletons. Concrete decoders supply the Decode callback;
// the skeletons own the buffer declaration, the replay loop on partial
// input, and error routing.

package codec

import (
	"github.com/cockroachdb/errors"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

// StreamDecodeFunc consumes readable bytes of in and returns one decoded
// message, or nil when more input is needed. Returning nil without consuming
// anything ends the decode round.
type StreamDecodeFunc func(ctx api.Context, in api.Buf) (any, error)

// StreamToMessageDecoder turns an inbound byte stream into messages.
type StreamToMessageDecoder struct {
	api.StateBase
	decode StreamDecodeFunc
}

// NewStreamToMessageDecoder builds a stream decoder around decode.
func NewStreamToMessageDecoder(decode StreamDecodeFunc) *StreamToMessageDecoder {
	return &StreamToMessageDecoder{decode: decode}
}

func (d *StreamToMessageDecoder) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.BytesHolder(buffer.Dynamic(0)), nil
}

func (d *StreamToMessageDecoder) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundBytes()
	notify := false
	for in.Readable() {
		before := in.ReaderIndex()
		msg, err := d.decode(ctx, in)
		if err != nil {
			ctx.FireExceptionCaught(wrapDecode(err))
			if in.ReaderIndex() == before {
				break
			}
			continue
		}
		if msg == nil {
			if in.ReaderIndex() == before {
				break // need more input
			}
			continue
		}
		if in.ReaderIndex() == before {
			ctx.FireExceptionCaught(wrapDecode(
				errors.New("decoder produced a message without consuming input")))
			break
		}
		ctx.NextInboundMessages().Add(msg)
		notify = true
	}
	if notify {
		ctx.FireInboundBufferUpdated()
	}
	return nil
}

// MsgDecodeFunc transforms one inbound message.
type MsgDecodeFunc func(ctx api.Context, msg any) (any, error)

// MessageToMessageDecoder transforms inbound messages one at a time.
// Messages rejected by accept pass through untouched.
type MessageToMessageDecoder struct {
	api.StateBase
	decode MsgDecodeFunc
	accept func(msg any) bool
}

// NewMessageToMessageDecoder builds a message decoder; a nil accept takes
// every message.
func NewMessageToMessageDecoder(decode MsgDecodeFunc, accept func(any) bool) *MessageToMessageDecoder {
	return &MessageToMessageDecoder{decode: decode, accept: accept}
}

func (d *MessageToMessageDecoder) NewInboundHolder(ctx api.Context) (api.Holder, error) {
	return api.MessagesHolder(buffer.NewMsgQueue()), nil
}

func (d *MessageToMessageDecoder) InboundUpdated(ctx api.Context) error {
	in := ctx.InboundMessages()
	notify := false
	for {
		msg, ok := in.Poll()
		if !ok {
			break
		}
		if d.accept != nil && !d.accept(msg) {
			ctx.NextInboundMessages().Add(msg)
			notify = true
			continue
		}
		out, err := d.decode(ctx, msg)
		if err != nil {
			ctx.FireExceptionCaught(wrapDecode(err))
			continue
		}
		if out == nil {
			continue
		}
		ctx.NextInboundMessages().Add(out)
		notify = true
	}
	if notify {
		ctx.FireInboundBufferUpdated()
	}
	return nil
}
