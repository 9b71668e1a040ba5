// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package runloop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New("runloop: stopped")

// Loop runs posted functions one at a time on the goroutine that calls Run.
//
// Functions run in the order they were posted. Timer callbacks registered
// with AfterFunc are posted when they fire, so they interleave with other
// work but never overlap it. The queue is unbounded; Post never blocks, and
// functions running on the loop may post more work.
//
// Thread safety: Post, Do, AfterFunc and Stop are safe for concurrent use.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	// wake has capacity 1 and signals that queue is non-empty.
	wake chan struct{}

	// done is closed by Stop.
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues f to run on the loop. It reports false if the loop has been
// stopped, in which case f will never run.
func (l *Loop) Post(f func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc posts f once d has elapsed. It implements bitwalk.Executor.
func (l *Loop) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() { l.Post(f) })
}

// Do runs f on the loop and waits for it to return. It must not be called
// from the loop goroutine itself.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions until ctx is cancelled or Stop is called.
// It returns ctx.Err() on cancellation and nil after Stop. Work still
// queued at that point is dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			for _, f := range l.take() {
				// Stop from inside a task ends the batch.
				select {
				case <-l.done:
					return nil
				default:
				}
				f()
			}
		}
	}
}

// take swaps out the pending queue.
func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

// Stop ends Run and rejects further posts. Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
	})
}
