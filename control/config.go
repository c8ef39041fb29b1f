// File: control/config.go
// Package control carries the runtime tunables and instrumentation of the
// pipeline core.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// Config holds the environment-driven tunables.
type Config struct {
	// HeadBufferSize pre-sizes the head sentinel's byte buffers of each channel.
	HeadBufferSize int `env:"HIOLOAD_HEAD_BUFFER_SIZE" envDefault:"4096"`
	// BridgeCapacity bounds bridge exchange queues, in batches.
	BridgeCapacity int `env:"HIOLOAD_BRIDGE_CAPACITY" envDefault:"256"`
	// LoopCount sizes the default loop group; 0 means one loop per CPU.
	LoopCount int `env:"HIOLOAD_LOOP_COUNT" envDefault:"0"`
	// PinLoops enables CPU pinning of loop goroutines (Linux only).
	PinLoops bool `env:"HIOLOAD_PIN_LOOPS" envDefault:"false"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if cfg.HeadBufferSize < 0 || cfg.BridgeCapacity < 0 || cfg.LoopCount < 0 {
		return Config{}, errors.New("config values must not be negative")
	}
	return cfg, nil
}
