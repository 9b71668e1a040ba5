// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package runloop

import (
	"container/heap"
	"time"
)

// Manual is an executor driven by a virtual clock.
//
// AfterFunc only records the callback; nothing runs until the caller
// advances the clock. Callbacks due at the same instant run in the order
// they were scheduled.
//
// Thread safety: Manual is NOT thread-safe. Use it from a single goroutine.
type Manual struct {
	now   time.Duration
	seq   uint64
	tasks taskHeap
}

// NewManual returns a Manual executor with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc schedules f to run once the clock reaches Now()+d.
// Negative delays count as zero.
func (m *Manual) AfterFunc(d time.Duration, f func()) {
	if d < 0 {
		d = 0
	}
	m.seq++
	heap.Push(&m.tasks, task{due: m.now + d, seq: m.seq, f: f})
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled callbacks that have not run.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

// RunNext moves the clock to the earliest scheduled callback and runs it.
// It reports false if nothing is scheduled.
func (m *Manual) RunNext() bool {
	if len(m.tasks) == 0 {
		return false
	}
	t := heap.Pop(&m.tasks).(task)
	if t.due > m.now {
		m.now = t.due
	}
	t.f()
	return true
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way, including callbacks scheduled by those callbacks. It
// returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	n := 0
	for len(m.tasks) > 0 && m.tasks[0].due <= target {
		m.RunNext()
		n++
	}
	m.now = target
	return n
}

// RunUntilIdle runs callbacks in due order until none are left and returns
// how many ran. Callbacks that keep rescheduling themselves make it loop
// forever.
func (m *Manual) RunUntilIdle() int {
	n := 0
	for m.RunNext() {
		n++
	}
	return n
}

type task struct {
	due time.Duration
	seq uint64
	f   func()
}

// taskHeap orders tasks by due time, then scheduling order.
type taskHeap []task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}
