// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package runloop provides executors for bitwalk engines.
//
// An engine is single-threaded: its Append calls and its deferred ticks must
// never run concurrently. Loop gives a program one goroutine that runs every
// such call in order, while other goroutines hand work to it with Post or
// Do. Manual runs deferred work on a virtual clock under the caller's
// control, which makes tick boundaries observable in tests.
//
// # Example
//
//	loop := runloop.New()
//	go loop.Run(ctx)
//
//	e, _ := bitwalk.New(tiles, bitwalk.WithExecutor(loop))
//	loop.Post(func() { _ = e.Append(data) })
package runloop
