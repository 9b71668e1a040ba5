// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "github.com/gogpu/bitwalk"

// Line is one recorded DrawLine call, in tile-local coordinates.
type Line struct {
	P0, P1 bitwalk.Point
	Style  bitwalk.Style
}

// Recorder is a surface that stores its draw calls instead of rendering
// them. Recordings can be replayed onto any other surface.
type Recorder struct {
	lines  []Line
	closed bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// DrawLine records the call.
func (r *Recorder) DrawLine(p0, p1 bitwalk.Point, style bitwalk.Style) error {
	if r.closed {
		return ErrClosed
	}
	r.lines = append(r.lines, Line{P0: p0, P1: p1, Style: style})
	return nil
}

// Lines returns the recorded calls in order. The slice must not be
// modified.
func (r *Recorder) Lines() []Line {
	return r.lines
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	return len(r.lines)
}

// Playback replays every recorded call onto dst and stops at the first
// error.
func (r *Recorder) Playback(dst bitwalk.Surface) error {
	for _, l := range r.lines {
		if err := dst.DrawLine(l.P0, l.P1, l.Style); err != nil {
			return err
		}
	}
	return nil
}

// Close marks the recorder closed. Recorded lines stay readable.
func (r *Recorder) Close() error {
	r.closed = true
	return nil
}

// RecordingFactory creates a Recorder per tile and keeps track of them,
// including recorders of tiles the engine has since evicted.
type RecordingFactory struct {
	recorders map[bitwalk.TileID]*Recorder
	order     []bitwalk.TileID
}

// NewRecordingFactory returns an empty factory.
func NewRecordingFactory() *RecordingFactory {
	return &RecordingFactory{recorders: make(map[bitwalk.TileID]*Recorder)}
}

// CreateSurface implements bitwalk.SurfaceFactory. A tile created again
// after eviction gets a fresh recorder.
func (f *RecordingFactory) CreateSurface(id bitwalk.TileID, _ bitwalk.Point) (bitwalk.Surface, error) {
	r := NewRecorder()
	f.recorders[id] = r
	f.order = append(f.order, id)
	return r, nil
}

// Recorder returns the most recent recorder created for id.
func (f *RecordingFactory) Recorder(id bitwalk.TileID) (*Recorder, bool) {
	r, ok := f.recorders[id]
	return r, ok
}

// Created returns every id passed to CreateSurface, in call order.
func (f *RecordingFactory) Created() []bitwalk.TileID {
	return f.order
}

// Discard is a surface that drops every call.
type Discard struct{}

// DrawLine does nothing.
func (Discard) DrawLine(bitwalk.Point, bitwalk.Point, bitwalk.Style) error { return nil }

// DiscardFactory hands out Discard surfaces.
type DiscardFactory struct{}

// CreateSurface implements bitwalk.SurfaceFactory.
func (DiscardFactory) CreateSurface(bitwalk.TileID, bitwalk.Point) (bitwalk.Surface, error) {
	return Discard{}, nil
}
