// File: control/control_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.HeadBufferSize)
	assert.Equal(t, 256, cfg.BridgeCapacity)
	assert.Equal(t, 0, cfg.LoopCount)
	assert.False(t, cfg.PinLoops)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HIOLOAD_HEAD_BUFFER_SIZE", "8192")
	t.Setenv("HIOLOAD_LOOP_COUNT", "2")
	t.Setenv("HIOLOAD_PIN_LOOPS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.HeadBufferSize)
	assert.Equal(t, 2, cfg.LoopCount)
	assert.True(t, cfg.PinLoops)
}

func TestLoadRejectsNegatives(t *testing.T) {
	t.Setenv("HIOLOAD_BRIDGE_CAPACITY", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestPipelineStatsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats, err := NewPipelineStats(reg)
	require.NoError(t, err)

	stats.InboundEvent("inbound")
	stats.InboundEvent("inbound")
	stats.OutboundOp("flush")
	stats.BridgeFill("stream", 128)
	stats.BridgeFlush("stream", 128)
	stats.AllocHook(64)

	assert.Equal(t, float64(2), testutil.ToFloat64(stats.inboundEvents.WithLabelValues("inbound")))
	assert.Equal(t, float64(1), testutil.ToFloat64(stats.outboundOps.WithLabelValues("flush")))
	assert.Equal(t, float64(1), testutil.ToFloat64(stats.bridgeFills.WithLabelValues("stream")))
	assert.Equal(t, float64(128), testutil.ToFloat64(stats.bridgeUnits.WithLabelValues("stream")))
	assert.Equal(t, float64(64), testutil.ToFloat64(stats.allocBytes))
}

func TestPipelineStatsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPipelineStats(reg)
	require.NoError(t, err)
	_, err = NewPipelineStats(reg)
	assert.Error(t, err, "collectors collide on one registry")
}
