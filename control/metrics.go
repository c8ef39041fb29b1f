// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus instrumentation for the pipeline core. PipelineStats satisfies
// the pipeline's Stats callback interface; pass it to the channel with
// pipeline.WithStats.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineStats counts pipeline events, outbound operations and bridge
// traffic.
type PipelineStats struct {
	inboundEvents *prometheus.CounterVec
	outboundOps   *prometheus.CounterVec
	bridgeFills   *prometheus.CounterVec
	bridgeFlushes *prometheus.CounterVec
	bridgeUnits   *prometheus.CounterVec
	allocBytes    prometheus.Counter
}

// NewPipelineStats builds the collector set and registers it with reg.
func NewPipelineStats(reg prometheus.Registerer) (*PipelineStats, error) {
	s := &PipelineStats{
		inboundEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "pipeline",
			Name: "inbound_events_total",
			Help: "Inbound events dispatched through the pipeline, by kind.",
		}, []string{"kind"}),
		outboundOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "pipeline",
			Name: "outbound_operations_total",
			Help: "Outbound operations dispatched through the pipeline, by op.",
		}, []string{"op"}),
		bridgeFills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "bridge",
			Name: "fills_total",
			Help: "Producer-side bridge fills, by bridge kind.",
		}, []string{"kind"}),
		bridgeFlushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "bridge",
			Name: "flushes_total",
			Help: "Consumer-side bridge flushes, by bridge kind.",
		}, []string{"kind"}),
		bridgeUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "bridge",
			Name: "transferred_units_total",
			Help: "Bytes (stream) or messages (message) moved across bridges.",
		}, []string{"kind"}),
		allocBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload", Subsystem: "buffer",
			Name: "allocated_bytes_total",
			Help: "Bytes allocated through the instrumented allocator.",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.inboundEvents, s.outboundOps, s.bridgeFills, s.bridgeFlushes, s.bridgeUnits, s.allocBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// InboundEvent counts one dispatched inbound event.
func (s *PipelineStats) InboundEvent(kind string) {
	s.inboundEvents.WithLabelValues(kind).Inc()
}

// OutboundOp counts one outbound operation.
func (s *PipelineStats) OutboundOp(op string) {
	s.outboundOps.WithLabelValues(op).Inc()
}

// BridgeFill counts one producer-side fill of n units.
func (s *PipelineStats) BridgeFill(kind string, n int) {
	s.bridgeFills.WithLabelValues(kind).Inc()
	s.bridgeUnits.WithLabelValues(kind).Add(float64(n))
}

// BridgeFlush counts one consumer-side flush.
func (s *PipelineStats) BridgeFlush(kind string, n int) {
	s.bridgeFlushes.WithLabelValues(kind).Inc()
}

// AllocHook feeds the allocator counter; wire it with
// buffer.Default.WithAllocHook(stats.AllocHook).
func (s *PipelineStats) AllocHook(size int) {
	s.allocBytes.Add(float64(size))
}
