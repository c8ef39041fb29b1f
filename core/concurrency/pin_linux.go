//go:build linux

// File: core/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU affinity for loop goroutines via sched_setaffinity. Pure Go through
// golang.org/x/sys; failures are ignored, pinning is best-effort.

package concurrency

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinThread locks the calling goroutine to its OS thread and binds that
// thread to the given CPU.
func pinThread(cpu int) {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
