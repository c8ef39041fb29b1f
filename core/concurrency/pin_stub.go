//go:build !linux

// File: core/concurrency/pin_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "runtime"

// pinThread keeps the goroutine on a stable OS thread; CPU binding is only
// available on Linux.
func pinThread(int) {
	runtime.LockOSThread()
}
