// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/bitwalk"
)

// ErrClosed is returned when drawing into a closed surface.
var ErrClosed = errors.New("surface: closed")

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// Lines are stroked with butt caps and composited source-over. Each stroke
// is rasterized only over its own bounding box, so the cost of a short
// segment does not depend on the tile size.
type ImageSurface struct {
	img *image.RGBA

	// ras is reused across strokes; Reset sizes it to the stroke's bounds.
	ras *vector.Rasterizer

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a surface of the given dimensions filled with bg.
// A nil bg leaves the surface transparent.
func NewImageSurface(width, height int, bg color.Color) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	s := &ImageSurface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		ras: vector.NewRasterizer(0, 0),
	}
	if bg != nil {
		draw.Draw(s.img, s.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	return s
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.img.Bounds().Dy()
}

// DrawLine strokes p0→p1. Zero-length segments and segments entirely
// outside the surface draw nothing.
func (s *ImageSurface) DrawLine(p0, p1 bitwalk.Point, style bitwalk.Style) error {
	if s.closed {
		return ErrClosed
	}

	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	length := math.Hypot(dx, dy)
	if length == 0 || style.Width <= 0 || style.Color.A <= 0 {
		return nil
	}

	// Offset of the stroke's long edges from the center line.
	hw := style.Width / 2
	nx, ny := -dy/length*hw, dx/length*hw
	quad := [4]bitwalk.Point{
		{X: p0.X + nx, Y: p0.Y + ny},
		{X: p1.X + nx, Y: p1.Y + ny},
		{X: p1.X - nx, Y: p1.Y - ny},
		{X: p0.X - nx, Y: p0.Y - ny},
	}

	bounds := quadBounds(quad).Intersect(s.img.Bounds())
	if bounds.Empty() {
		return nil
	}

	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	s.ras.Reset(bounds.Dx(), bounds.Dy())
	s.ras.MoveTo(float32(quad[0].X-ox), float32(quad[0].Y-oy))
	for _, q := range quad[1:] {
		s.ras.LineTo(float32(q.X-ox), float32(q.Y-oy))
	}
	s.ras.ClosePath()
	s.ras.Draw(s.img, bounds, image.NewUniform(style.Color.NRGBA()), image.Point{})
	return nil
}

// quadBounds returns the smallest integer rectangle containing q.
func quadBounds(q [4]bitwalk.Point) image.Rectangle {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := minX, minY
	for _, p := range q[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

// Image returns the backing image. Drawing continues to modify it.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	dst := image.NewRGBA(s.img.Bounds())
	copy(dst.Pix, s.img.Pix)
	return dst
}

// Close marks the surface closed. Its image stays readable.
// Close is idempotent.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

// ImageFactory creates an ImageSurface for every tile.
type ImageFactory struct {
	TileSize   int
	Background color.Color
}

// NewImageFactory returns a factory for size × size image tiles filled
// with bg.
func NewImageFactory(size int, bg color.Color) *ImageFactory {
	return &ImageFactory{TileSize: size, Background: bg}
}

// CreateSurface implements bitwalk.SurfaceFactory.
func (f *ImageFactory) CreateSurface(bitwalk.TileID, bitwalk.Point) (bitwalk.Surface, error) {
	return NewImageSurface(f.TileSize, f.TileSize, f.Background), nil
}
