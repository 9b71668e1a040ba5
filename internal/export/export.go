// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package export writes the tiles of a bitwalk engine to disk.
package export

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/gogpu/bitwalk"
	"github.com/gogpu/bitwalk/surface"
)

// TileName returns the file name used for tile id.
func TileName(id bitwalk.TileID) string {
	return fmt.Sprintf("tile_%d_%d.png", id.I, id.J)
}

// Tile saves a single tile as a PNG in dir.
func Tile(dir string, t *bitwalk.Tile) error {
	img, ok := surface.ImageOf(t.Surface)
	if !ok {
		return fmt.Errorf("export: tile %v: %T has no image", t.ID, t.Surface)
	}
	return surface.SavePNG(filepath.Join(dir, TileName(t.ID)), img)
}

// Tiles saves every tile as a PNG in dir, encoding them on p's workers.
// Images are captured before encoding starts, so the tiles may be drawn
// into again as soon as Tiles returns. Every tile is attempted; the
// returned error joins all failures.
func Tiles(p *Pool, dir string, tiles []*bitwalk.Tile) error {
	tasks := make([]func() error, 0, len(tiles))
	for _, t := range tiles {
		img, ok := surface.ImageOf(t.Surface)
		if !ok {
			return fmt.Errorf("export: tile %v: %T has no image", t.ID, t.Surface)
		}
		snap := image.NewRGBA(img.Bounds())
		copy(snap.Pix, img.Pix)

		path := filepath.Join(dir, TileName(t.ID))
		tasks = append(tasks, func() error {
			return surface.SavePNG(path, snap)
		})
	}
	return p.Run(tasks)
}
