// Package clock wraps the wall clock so that run timings can be pinned in tests.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Since returns the time elapsed since started, measured with NowFunc.
func Since(started time.Time) time.Duration { return NowFunc().Sub(started) }
