// File: codec/delimiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Delimiter-based framing. Frames longer than the configured maximum are
// discarded; fail-fast reports the overflow as soon as it is detected,
// fail-slow waits for the closing delimiter. Either way the decoder resyncs
// on the next delimiter and keeps going.

package codec

import (
	"bytes"
	"math"

	"github.com/momentics/hioload-pipeline/api"
)

// Common delimiters.
var (
	// NulDelimiter frames on a single 0x00 byte.
	NulDelimiter = [][]byte{{0}}
	// LineDelimiter frames on "\r\n" or "\n".
	LineDelimiter = [][]byte{{'\r', '\n'}, {'\n'}}
)

// DelimiterFrameDecoder splits the inbound stream on any of a set of
// delimiters. Decoded frames are api.Buf messages.
type DelimiterFrameDecoder struct {
	*StreamToMessageDecoder

	maxLength      int
	stripDelimiter bool
	failFast       bool
	delimiters     [][]byte

	discarding bool
	discarded  int
}

// DelimiterOption configures a DelimiterFrameDecoder.
type DelimiterOption func(*DelimiterFrameDecoder)

// WithKeepDelimiter keeps the delimiter at the end of each decoded frame.
func WithKeepDelimiter() DelimiterOption {
	return func(d *DelimiterFrameDecoder) { d.stripDelimiter = false }
}

// WithFailFast reports an oversized frame the moment the limit is crossed
// instead of waiting for the closing delimiter.
func WithFailFast() DelimiterOption {
	return func(d *DelimiterFrameDecoder) { d.failFast = true }
}

// NewDelimiterFrameDecoder frames on the given delimiters, bounding frames
// at maxLength bytes.
func NewDelimiterFrameDecoder(maxLength int, delimiters [][]byte, opts ...DelimiterOption) *DelimiterFrameDecoder {
	d := &DelimiterFrameDecoder{
		maxLength:      maxLength,
		stripDelimiter: true,
		delimiters:     delimiters,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.StreamToMessageDecoder = NewStreamToMessageDecoder(d.decode)
	return d
}

func (d *DelimiterFrameDecoder) decode(ctx api.Context, in api.Buf) (any, error) {
	// Closest delimiter wins; ties resolve to the shorter frame.
	frameLength := math.MaxInt
	var delim []byte
	readable := in.Window(in.ReaderIndex(), in.ReadableBytes())
	for _, cand := range d.delimiters {
		if i := bytes.Index(readable, cand); i >= 0 && i < frameLength {
			frameLength = i
			delim = cand
		}
	}

	if delim == nil {
		if d.discarding {
			d.discarded += in.ReadableBytes()
			in.Skip(in.ReadableBytes())
			return nil, nil
		}
		if in.ReadableBytes() > d.maxLength {
			d.discarded = in.ReadableBytes()
			in.Skip(in.ReadableBytes())
			d.discarding = true
			if d.failFast {
				return nil, tooLongFrame(d.discarded, d.maxLength)
			}
		}
		return nil, nil
	}

	if d.discarding {
		length := d.discarded + frameLength
		in.Skip(frameLength + len(delim))
		d.discarded = 0
		d.discarding = false
		if !d.failFast {
			return nil, tooLongFrame(length, d.maxLength)
		}
		return nil, nil
	}

	if frameLength > d.maxLength {
		in.Skip(frameLength + len(delim))
		return nil, tooLongFrame(frameLength, d.maxLength)
	}

	if d.stripDelimiter {
		frame := in.ReadBytes(frameLength)
		in.Skip(len(delim))
		return frame, nil
	}
	return in.ReadBytes(frameLength + len(delim)), nil
}
