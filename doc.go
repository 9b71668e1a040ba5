// Package bitwalk draws arbitrary data as a continuous random walk.
//
// # Overview
//
// Every bit of input turns a walker left (0) or right (1) by a fixed angle
// and moves it a fixed distance along its new heading. The resulting path is
// drawn across an unbounded plane that is cut into square tiles; a tile and
// its drawing surface are created the first time the walk enters it.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/bitwalk"
//	    "github.com/gogpu/bitwalk/surface"
//	)
//
//	tiles := surface.NewImageFactory(256, bitwalk.Black)
//	e, err := bitwalk.New(tiles)
//	if err != nil {
//	    return err
//	}
//	if _, err := io.Copy(e, r); err != nil {
//	    return err
//	}
//	img, err := surface.Compose(e.Tiles(), bitwalk.Black)
//
// # Scheduling
//
// Input is consumed in ticks of at most Config.ChunkSize bytes. Append runs
// the first tick of a pass itself and hands every further tick to the
// Executor given with WithExecutor, Config.TickInterval later. Without an
// executor the engine runs all ticks synchronously. See the runloop package
// for a goroutine-backed executor and a virtual-clock executor for tests.
//
// # Coordinate System
//
//   - Tile (i, j) covers global points with ceil((x - T/2) / T) == i and
//     likewise for y, where T is Config.TileSize.
//   - Surfaces receive tile-local coordinates with the origin at the tile's
//     top-left corner.
//   - Angles are in radians; heading 0 points along +X.
//
// # Errors
//
// The walk arithmetic cannot fail. Errors come only from the host's
// SurfaceFactory or Surface; they stop the current pass and halt the engine.
package bitwalk
