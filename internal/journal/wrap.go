// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package journal

import (
	"io"

	"github.com/gogpu/bitwalk"
)

// Wrap returns a factory whose surfaces journal every draw call to w
// before passing it on to the surface created by f.
func Wrap(f bitwalk.SurfaceFactory, w *Writer) bitwalk.SurfaceFactory {
	return bitwalk.SurfaceFactoryFunc(func(id bitwalk.TileID, origin bitwalk.Point) (bitwalk.Surface, error) {
		s, err := f.CreateSurface(id, origin)
		if err != nil {
			return nil, err
		}
		return &journaledSurface{id: id, inner: s, w: w}, nil
	})
}

type journaledSurface struct {
	id    bitwalk.TileID
	inner bitwalk.Surface
	w     *Writer
}

func (s *journaledSurface) DrawLine(p0, p1 bitwalk.Point, style bitwalk.Style) error {
	err := s.w.Write(Entry{
		I:     s.id.I,
		J:     s.id.J,
		X0:    p0.X,
		Y0:    p0.Y,
		X1:    p1.X,
		Y1:    p1.Y,
		Color: style.Color.String(),
		Width: style.Width,
	})
	if err != nil {
		return err
	}
	return s.inner.DrawLine(p0, p1, style)
}

// Unwrap returns the journaled surface.
func (s *journaledSurface) Unwrap() bitwalk.Surface {
	return s.inner
}

func (s *journaledSurface) Close() error {
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
