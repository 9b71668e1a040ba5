package bitwalk

import "time"

// Executor schedules deferred work on the engine's thread of control.
//
// The engine calls AfterFunc from inside a tick to request the next one.
// Implementations must run f on the same logical thread that calls Append
// and must never run it concurrently with other engine calls. The runloop
// package provides a goroutine-backed loop and a virtual-clock executor.
type Executor interface {
	AfterFunc(d time.Duration, f func())
}
