// File: fake/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

// Loop is a synchronous executor: Submit runs the task inline and InLoop is
// always true, so every pipeline event dispatches immediately on the caller
// goroutine. That makes embedded-channel tests fully deterministic and
// keeps all contexts on one executor (no bridges).
type Loop struct{}

// NewLoop returns the synchronous test executor.
func NewLoop() *Loop { return &Loop{} }

func (*Loop) Submit(task func()) error {
	task()
	return nil
}

func (*Loop) InLoop() bool { return true }

func (*Loop) Close() {}
