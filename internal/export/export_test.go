// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package export

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gogpu/bitwalk"
	"github.com/gogpu/bitwalk/surface"
)

func TestPoolRun(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	var n atomic.Int32
	tasks := make([]func() error, 50)
	for i := range tasks {
		tasks[i] = func() error {
			n.Add(1)
			return nil
		}
	}
	if err := p.Run(tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n.Load() != 50 {
		t.Errorf("ran %d tasks, want 50", n.Load())
	}
}

func TestPoolRunJoinsErrors(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	e1, e2 := errors.New("one"), errors.New("two")
	err := p.Run([]func() error{
		func() error { return e1 },
		func() error { return nil },
		func() error { return e2 },
	})
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("Run = %v, want both errors", err)
	}
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(0)
	if p.Workers() < 1 {
		t.Errorf("Workers() = %d", p.Workers())
	}
	p.Close()
	p.Close()
	if err := p.Run([]func() error{func() error { return nil }}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Run after Close = %v, want ErrPoolClosed", err)
	}
}

func TestTiles(t *testing.T) {
	e, err := bitwalk.New(surface.NewImageFactory(16, color.White), bitwalk.WithTileSize(16))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.AppendText("export every tile of this walk"); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	p := NewPool(4)
	defer p.Close()
	if err := Tiles(p, dir, e.Tiles()); err != nil {
		t.Fatalf("Tiles: %v", err)
	}

	for _, id := range e.TileIDs() {
		f, err := os.Open(filepath.Join(dir, TileName(id)))
		if err != nil {
			t.Errorf("tile %v: %v", id, err)
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Errorf("tile %v: %v", id, err)
			continue
		}
		if img.Bounds().Dx() != 16 {
			t.Errorf("tile %v width = %d, want 16", id, img.Bounds().Dx())
		}
	}
}

func TestTilesWithoutImages(t *testing.T) {
	tiles := []*bitwalk.Tile{{Surface: surface.NewRecorder()}}
	p := NewPool(1)
	defer p.Close()
	if err := Tiles(p, t.TempDir(), tiles); err == nil {
		t.Error("Tiles with a recorder surface succeeded")
	}
}
