// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package journal records the draw calls of a bitwalk engine as a
// zstd-compressed JSON Lines stream, one entry per DrawLine call.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/bitwalk"
)

// Entry is one journaled draw call. Coordinates are tile-local.
type Entry struct {
	Seq   uint64  `json:"seq"`
	I     int     `json:"i"`
	J     int     `json:"j"`
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Color string  `json:"color"` // #rrggbbaa
	Width float64 `json:"width"`
}

// Tile returns the id of the tile the call was made on.
func (e Entry) Tile() bitwalk.TileID {
	return bitwalk.TileID{I: e.I, J: e.J}
}

// Points returns the end points of the line.
func (e Entry) Points() (bitwalk.Point, bitwalk.Point) {
	return bitwalk.Pt(e.X0, e.Y0), bitwalk.Pt(e.X1, e.Y1)
}

// Style decodes the stroke style. Colors are stored with 8 bits per channel.
func (e Entry) Style() (bitwalk.Style, error) {
	c, err := bitwalk.ParseHex(e.Color)
	if err != nil {
		return bitwalk.Style{}, fmt.Errorf("journal: entry %d: %w", e.Seq, err)
	}
	return bitwalk.Style{Color: c, Width: e.Width}, nil
}

// Writer appends entries to a compressed stream.
type Writer struct {
	mu  sync.Mutex
	enc *zstd.Encoder
	w   *bufio.Writer
	seq uint64
}

// NewWriter starts a journal on dst. Close must be called to flush the
// stream; it does not close dst.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Writer{
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write assigns e the next sequence number and appends it.
func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	e.Seq = w.seq
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Count returns the number of entries written.
func (w *Writer) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// Close flushes buffered entries and ends the zstd frame.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.w.Flush(); err != nil {
		_ = w.enc.Close()
		return err
	}
	return w.enc.Close()
}

// Read decodes a journal from r and calls fn for every entry in order. It
// stops at the first error returned by fn.
func Read(r io.Reader, fn func(Entry) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("journal: line %d: %w", line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Replay decodes a journal from r and redraws every entry onto the surface
// that target returns for its tile. A nil surface skips the entry.
func Replay(r io.Reader, target func(bitwalk.TileID) bitwalk.Surface) error {
	return Read(r, func(e Entry) error {
		s := target(e.Tile())
		if s == nil {
			return nil
		}
		style, err := e.Style()
		if err != nil {
			return err
		}
		p0, p1 := e.Points()
		return s.DrawLine(p0, p1, style)
	})
}
