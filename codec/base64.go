// File: codec/base64.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Base64 message codecs over api.Buf frames. Typically paired with a
// delimiter decoder on the inbound side.

package codec

import (
	"bytes"
	"encoding/base64"

	"github.com/momentics/hioload-pipeline/api"
	"github.com/momentics/hioload-pipeline/core/buffer"
)

// base64LineLength is where encoded output is wrapped when line breaks are
// enabled.
const base64LineLength = 76

func isBuf(msg any) bool {
	_, ok := msg.(api.Buf)
	return ok
}

// Base64Encoder encodes outbound api.Buf messages to Base64.
type Base64Encoder struct {
	*MessageToMessageEncoder
	breakLines bool
	enc        *base64.Encoding
}

// Base64Option configures the codec pair.
type Base64Option func(*base64Config)

type base64Config struct {
	breakLines bool
	enc        *base64.Encoding
}

// WithLineBreaks wraps encoded output every 76 characters.
func WithLineBreaks() Base64Option {
	return func(c *base64Config) { c.breakLines = true }
}

// WithEncoding substitutes the Base64 dialect (default: StdEncoding).
func WithEncoding(enc *base64.Encoding) Base64Option {
	return func(c *base64Config) { c.enc = enc }
}

// NewBase64Encoder builds the encoder stage.
func NewBase64Encoder(opts ...Base64Option) *Base64Encoder {
	cfg := base64Config{enc: base64.StdEncoding}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Base64Encoder{breakLines: cfg.breakLines, enc: cfg.enc}
	e.MessageToMessageEncoder = NewMessageToMessageEncoder(e.encode, isBuf)
	return e
}

func (e *Base64Encoder) encode(ctx api.Context, msg any) (any, error) {
	in := msg.(api.Buf)
	raw := make([]byte, in.ReadableBytes())
	in.GetBytes(in.ReaderIndex(), raw)

	encoded := []byte(e.enc.EncodeToString(raw))
	if e.breakLines && len(encoded) > base64LineLength {
		var out bytes.Buffer
		for len(encoded) > base64LineLength {
			out.Write(encoded[:base64LineLength])
			out.WriteByte('\n')
			encoded = encoded[base64LineLength:]
		}
		out.Write(encoded)
		encoded = out.Bytes()
	}
	return buffer.Wrap(encoded), nil
}

// Base64Decoder decodes inbound Base64 api.Buf messages.
type Base64Decoder struct {
	*MessageToMessageDecoder
	enc *base64.Encoding
}

// NewBase64Decoder builds the decoder stage.
func NewBase64Decoder(opts ...Base64Option) *Base64Decoder {
	cfg := base64Config{enc: base64.StdEncoding}
	for _, opt := range opts {
		opt(&cfg)
	}
	d := &Base64Decoder{enc: cfg.enc}
	d.MessageToMessageDecoder = NewMessageToMessageDecoder(d.decode, isBuf)
	return d
}

func (d *Base64Decoder) decode(ctx api.Context, msg any) (any, error) {
	in := msg.(api.Buf)
	raw := make([]byte, in.ReadableBytes())
	in.GetBytes(in.ReaderIndex(), raw)

	// Tolerate line-broken input from the encoder.
	raw = bytes.ReplaceAll(raw, []byte("\r"), nil)
	raw = bytes.ReplaceAll(raw, []byte("\n"), nil)

	decoded, err := d.enc.DecodeString(string(raw))
	if err != nil {
		return nil, err
	}
	return buffer.Wrap(decoded), nil
}
