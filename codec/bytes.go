// File: codec/bytes.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw byte-slice message codecs: api.Buf frames to []byte and back, for
// applications that want plain slices above a framing decoder.

package codec

import (
	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

// NewByteSliceDecoder turns inbound api.Buf frames into []byte messages.
func NewByteSliceDecoder() *MessageToMessageDecoder {
	return NewMessageToMessageDecoder(func(ctx api.Context, msg any) (any, error) {
		in := msg.(api.Buf)
		out := make([]byte, in.ReadableBytes())
		in.GetBytes(in.ReaderIndex(), out)
		return out, nil
	}, isBuf)
}

// NewBufToStreamEncoder flushes outbound api.Buf messages into the next
// outbound byte stream. It is the terminal encoder of message-shaped
// outbound chains.
func NewBufToStreamEncoder() *MessageToStreamEncoder {
	return NewMessageToStreamEncoder(func(ctx api.Context, msg any, out api.Buf) error {
		out.WriteBytesBuf(msg.(api.Buf))
		return nil
	}, isBuf)
}

// NewByteSliceEncoder turns outbound []byte messages into api.Buf frames.
func NewByteSliceEncoder() *MessageToMessageEncoder {
	return NewMessageToMessageEncoder(func(ctx api.Context, msg any) (any, error) {
		p := msg.([]byte)
		clone := make([]byte, len(p))
		copy(clone, p)
		return buffer.Wrap(clone), nil
	}, func(msg any) bool {
		_, ok := msg.([]byte)
		return ok
	})
}
