// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides tile surfaces for bitwalk engines.
//
// # Surface Types
//
//   - ImageSurface: anti-aliased CPU rendering into an *image.RGBA using
//     golang.org/x/image/vector
//   - Recorder: keeps every DrawLine call for inspection and replay
//   - Discard: accepts and drops every call
//
// Each type has a matching bitwalk.SurfaceFactory.
//
// # Registry
//
// Factories are also available by name, so that command-line tools and
// configuration files can select one:
//
//	f, err := surface.NewFactory("image", surface.Options{TileSize: 256})
//
// The built-in backends are "image" (default), "record" and "discard".
// Further backends can be added with Register.
//
// # Output
//
// Compose lays image tiles out at their screen origins, border gaps
// included, and returns one image of the whole walk. SavePNG writes any
// image to disk.
//
//	img, err := surface.Compose(e.Tiles(), color.Black)
//	if err != nil {
//	    return err
//	}
//	err = surface.SavePNG("walk.png", img)
package surface
