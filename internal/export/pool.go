// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs batches of tasks on a fixed set of goroutines.
//
// Every worker owns a queue. A worker whose queue is empty takes tasks from
// the other queues before blocking, so one slow task does not hold up the
// tasks queued behind it.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool of n workers. If n is 0 or negative, GOMAXPROCS
// is used.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	depth := max(n*4, 8)

	p := &Pool{
		workers: n,
		queues:  make([]chan func(), n),
		done:    make(chan struct{}),
	}
	for i := range n {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(n)
	for i := range n {
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			drain(own)
			return
		case f := <-own:
			f()
			continue
		default:
		}

		if f := p.steal(id); f != nil {
			f()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case f := <-own:
			f()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case f := <-q:
			f()
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case f := <-p.queues[i]:
			return f
		default:
		}
	}
	return nil
}

// ErrPoolClosed is returned by Run after Close.
var ErrPoolClosed = errors.New("export: pool closed")

// Run distributes tasks round-robin, waits for all of them and returns
// their errors joined.
func (p *Pool) Run(tasks []func() error) error {
	if !p.running.Load() {
		return ErrPoolClosed
	}
	if len(tasks) == 0 {
		return nil
	}

	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		f := func() {
			defer wg.Done()
			errs[i] = task()
		}
		select {
		case p.queues[i%p.workers] <- f:
		case <-p.done:
			errs[i] = ErrPoolClosed
			wg.Done()
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Close waits for queued tasks and stops the workers. Close is idempotent.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}
