// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package runloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l
}

func TestLoopRunsInPostOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}
	// Do runs after everything posted before it.
	if err := l.Do(context.Background(), func() {}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if len(got) != 100 {
		t.Fatalf("ran %d tasks, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestLoopPostFromTask(t *testing.T) {
	l := startLoop(t)

	ran := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(ran) })
	})

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("nested post never ran")
	}
}

func TestLoopAfterFunc(t *testing.T) {
	l := startLoop(t)

	ran := make(chan time.Time, 1)
	start := time.Now()
	l.AfterFunc(20*time.Millisecond, func() { ran <- time.Now() })

	select {
	case at := <-ran:
		if at.Sub(start) < 20*time.Millisecond {
			t.Errorf("AfterFunc ran after %v, want >= 20ms", at.Sub(start))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("AfterFunc never ran")
	}
}

func TestLoopSerializesProducers(t *testing.T) {
	l := startLoop(t)

	counter := 0 // only touched on the loop goroutine
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var got int
	if err := l.Do(context.Background(), func() { got = counter }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 800 {
		t.Errorf("counter = %d, want 800", got)
	}
}

func TestLoopStop(t *testing.T) {
	l := New()
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	l.Stop()
	l.Stop() // idempotent

	if err := <-done; err != nil {
		t.Errorf("Run after Stop = %v, want nil", err)
	}
	if l.Post(func() {}) {
		t.Error("Post after Stop should report false")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Do after Stop = %v, want ErrStopped", err)
	}
}

func TestLoopContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
