// File: core/buffer/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package buffer implements the indexed byte-buffer substrate of the
// pipeline: heap-backed, growable and wrapping buffers, plus slice and
// duplicate views sharing parent storage, all behind api.Buf.
//
// A buffer keeps two cursors over its addressable window:
//
//	+-------------------+------------------+------------------+
//	| discardable bytes |  readable bytes  |  writable bytes  |
//	+-------------------+------------------+------------------+
//	0        <=    readerIndex   <=   writerIndex    <=   capacity
//
// Out-of-range accesses panic with *api.BoundsError; the pipeline dispatcher
// converts such panics into routed exceptions.
package buffer
