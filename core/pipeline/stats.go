// File: core/pipeline/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

// Stats receives pipeline instrumentation callbacks. The control package
// provides a Prometheus-backed implementation; the zero default drops
// everything.
type Stats interface {
	// InboundEvent counts one dispatched inbound event of the given kind
	// ("registered", "active", "inbound", "exception", "user", ...).
	InboundEvent(kind string)
	// OutboundOp counts one outbound operation ("flush", "write", "close", ...).
	OutboundOp(op string)
	// BridgeFill counts one producer-side bridge fill of n bytes/messages.
	BridgeFill(kind string, n int)
	// BridgeFlush counts one consumer-side bridge flush of n bytes/messages.
	BridgeFlush(kind string, n int)
}

type nopStats struct{}

func (nopStats) InboundEvent(string) {}
func (nopStats) OutboundOp(string) {}
func (nopStats) BridgeFill(string, int) {}
func (nopStats) BridgeFlush(string, int) {}
