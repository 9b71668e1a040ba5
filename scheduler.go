package bitwalk

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// State is the scheduler state of an Engine.
type State uint8

const (
	// StateIdle means every appended byte has been consumed.
	StateIdle State = iota

	// StateDraining means a pass is in progress; more ticks will follow.
	StateDraining

	// StateHalted means a pass failed. The engine accepts no more input.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraining:
		return "draining"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// maxRetainedBuffer is the largest buffer capacity kept across compactions.
// Larger backing arrays are released once their consumed prefix is dropped.
const maxRetainedBuffer = 64 << 10

// scheduler owns the input buffer and cuts its processing into ticks of at
// most chunk bytes. Between ticks it yields to the executor; without one it
// runs the ticks back to back.
type scheduler struct {
	buf   []byte
	pos   int // next byte to consume; pos <= len(buf)
	state State
	err   error

	chunk      int
	interval   time.Duration
	executor   Executor
	compaction CompactionPolicy

	consume func(b byte) error
	onError func(error)
	logger  *slog.Logger
	stats   *Stats

	tickFunc func() // s.deferredTick, bound once
}

// append queues p and starts a pass if none is running.
func (s *scheduler) append(p []byte) error {
	if s.state == StateHalted {
		return &haltedError{cause: s.err}
	}
	s.buf = append(s.buf, p...)
	s.stats.BytesAppended += int64(len(p))

	if s.state == StateDraining || s.pos >= len(s.buf) {
		return nil
	}

	s.state = StateDraining
	s.stats.Passes++
	s.logger.Debug("bitwalk: pass started", "pending", len(s.buf)-s.pos)

	if s.executor == nil {
		for s.state == StateDraining {
			if err := s.tick(); err != nil {
				return err
			}
		}
		return nil
	}
	return s.tick()
}

// tick consumes up to chunk bytes, then either finishes the pass or
// schedules the next tick. The buffer length is re-read on every iteration
// so bytes appended during the tick are picked up in order.
func (s *scheduler) tick() error {
	s.stats.Ticks++
	n := 0
	for s.pos < len(s.buf) && n < s.chunk {
		if err := s.consume(s.buf[s.pos]); err != nil {
			s.stats.BytesConsumed += int64(n)
			return s.halt(err)
		}
		s.pos++
		n++
	}
	s.stats.BytesConsumed += int64(n)

	if s.pos >= len(s.buf) {
		s.state = StateIdle
		if s.compaction == CompactOnIdle {
			s.compact()
		}
		s.logger.Debug("bitwalk: pass finished", "ticks", s.stats.Ticks, "consumed", s.stats.BytesConsumed)
		return nil
	}

	s.logger.Debug("bitwalk: tick yielded", "consumed", n, "pending", len(s.buf)-s.pos)
	if s.executor != nil {
		s.executor.AfterFunc(s.interval, s.tickFunc)
	}
	return nil
}

// deferredTick is the executor callback. Its error has no caller, so it goes
// to the error handler.
func (s *scheduler) deferredTick() {
	if s.state != StateDraining {
		return
	}
	if err := s.tick(); err != nil {
		s.onError(err)
	}
}

func (s *scheduler) halt(err error) error {
	s.state = StateHalted
	s.err = err
	s.logger.Error("bitwalk: pass failed", "offset", s.pos, "err", err)
	return err
}

// compact drops the consumed prefix of the buffer. It does nothing while a
// pass is in progress.
func (s *scheduler) compact() {
	if s.state == StateDraining || s.pos == 0 {
		return
	}
	if cap(s.buf) > maxRetainedBuffer {
		s.buf = slices.Clone(s.buf[s.pos:])
	} else {
		n := copy(s.buf, s.buf[s.pos:])
		s.buf = s.buf[:n]
	}
	s.pos = 0
}

// buffered returns the number of appended bytes not yet consumed.
func (s *scheduler) buffered() int {
	return len(s.buf) - s.pos
}
