// File: codec/errors.go
// Package codec layers framing and transformation stages over the pipeline.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package codec

import (
	"github.com/cockroachdb/errors"
)

// Codec error marks. An error already marked ErrCodec travels through
// encoders and decoders unchanged; anything else a codec callback returns is
// wrapped and marked first, so callers can always tell codec-owned failures
// from wrapped user failures.
var (
	ErrCodec  = errors.New("codec error")
	ErrEncode = errors.New("encoder error")
	ErrDecode = errors.New("decoder error")

	// ErrTooLongFrame reports a frame exceeding the decoder's limit.
	ErrTooLongFrame = errors.New("frame length exceeds maximum")
)

// IsCodec reports whether err is codec-owned.
func IsCodec(err error) bool { return errors.Is(err, ErrCodec) }

func wrapEncode(err error) error {
	if IsCodec(err) {
		return err
	}
	return errors.Mark(errors.Mark(errors.Wrap(err, "encode"), ErrEncode), ErrCodec)
}

func wrapDecode(err error) error {
	if IsCodec(err) {
		return err
	}
	return errors.Mark(errors.Mark(errors.Wrap(err, "decode"), ErrDecode), ErrCodec)
}

func tooLongFrame(length, max int) error {
	return errors.Mark(errors.Wrapf(ErrTooLongFrame, "frame length %d exceeds %d", length, max), ErrCodec)
}
