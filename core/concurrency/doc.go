// File: core/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package concurrency provides the executor substrate of the pipeline: a
// single-goroutine Loop executor with inline-dispatch detection, loop groups
// for multi-loop channels, and the bounded lock-free queue used both for
// task intake and for the cross-executor bridge exchange.
package concurrency
