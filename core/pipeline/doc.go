// File: core/pipeline/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pipeline implements the per-connection handler chain: a doubly
// linked list of handler contexts between a head and a tail sentinel.
//
// Inbound events enter at the head and travel forward; outbound operations
// travel backward from the calling context to the head, whose handler drives
// the channel's transport. Adjacent contexts pinned to different executors
// never touch each other's buffers: producers write into the consumer
// context's bridge intake, the bridge is filled on the producer executor and
// flushed on the consumer executor, and the exchange queue between the two
// is the only cross-goroutine structure.
package pipeline
