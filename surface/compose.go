// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/bitwalk"
)

// ErrNoTiles is returned by Compose when there is nothing to compose.
var ErrNoTiles = errors.New("surface: no tiles")

// Imager is implemented by surfaces whose contents are an image.
type Imager interface {
	Image() *image.RGBA
}

// ImageOf returns the image behind s, looking through wrapping surfaces
// that provide an Unwrap method.
func ImageOf(s bitwalk.Surface) (*image.RGBA, bool) {
	for s != nil {
		if im, ok := s.(Imager); ok {
			return im.Image(), true
		}
		u, ok := s.(interface{ Unwrap() bitwalk.Surface })
		if !ok {
			break
		}
		s = u.Unwrap()
	}
	return nil, false
}

// Compose places every tile at its screen origin and returns the combined
// image. Gaps between tiles, and places the walk never visited, are filled
// with bg. Every tile's surface must implement Imager, directly or
// through Unwrap.
func Compose(tiles []*bitwalk.Tile, bg color.Color) (*image.RGBA, error) {
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}

	imgs := make([]*image.RGBA, len(tiles))
	var bounds image.Rectangle
	for i, t := range tiles {
		img, ok := ImageOf(t.Surface)
		if !ok {
			return nil, fmt.Errorf("surface: tile %v: %T has no image", t.ID, t.Surface)
		}
		imgs[i] = img
		bounds = bounds.Union(placement(t, imgs[i]))
	}

	dst := image.NewRGBA(bounds.Sub(bounds.Min))
	if bg != nil {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	}
	for i, t := range tiles {
		r := placement(t, imgs[i]).Sub(bounds.Min)
		xdraw.Draw(dst, r, imgs[i], imgs[i].Bounds().Min, xdraw.Src)
	}
	return dst, nil
}

// ComposeScaled is like Compose but shrinks the result, preserving the
// aspect ratio, so that neither side exceeds maxSide. Smaller mosaics are
// returned unscaled.
func ComposeScaled(tiles []*bitwalk.Tile, bg color.Color, maxSide int) (*image.RGBA, error) {
	full, err := Compose(tiles, bg)
	if err != nil {
		return nil, err
	}
	w, h := full.Bounds().Dx(), full.Bounds().Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return full, nil
	}

	scale := float64(maxSide) / float64(max(w, h))
	sw := max(1, int(math.Round(float64(w)*scale)))
	sh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), full, full.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// placement returns where t's image lands on screen.
func placement(t *bitwalk.Tile, img *image.RGBA) image.Rectangle {
	x := int(math.Floor(t.Origin.X))
	y := int(math.Floor(t.Origin.Y))
	return image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
}

// SavePNG writes img to a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
