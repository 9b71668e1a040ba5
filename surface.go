package bitwalk

// Style describes how a single segment is stroked.
type Style struct {
	Color RGBA
	Width float64
}

// Surface is the drawing target backing one tile.
//
// Coordinates passed to DrawLine are local to the tile: (0, 0) is the
// tile's top-left corner and (TileSize, TileSize) its bottom-right. Points
// may lie outside that square; implementations clip as they see fit.
//
// Surfaces are driven from the engine's single thread of control and need
// not be safe for concurrent use.
type Surface interface {
	// DrawLine strokes the straight segment p0→p1 with the given style.
	// A non-nil error halts the engine.
	DrawLine(p0, p1 Point, style Style) error
}

// SurfaceFactory allocates the surface for a newly visited tile.
//
// origin is the tile's screen offset, which includes the configured border
// gap between neighbouring tiles. Every surface is TileSize × TileSize.
type SurfaceFactory interface {
	CreateSurface(id TileID, origin Point) (Surface, error)
}

// SurfaceFactoryFunc adapts an ordinary function to SurfaceFactory.
type SurfaceFactoryFunc func(id TileID, origin Point) (Surface, error)

// CreateSurface calls f(id, origin).
func (f SurfaceFactoryFunc) CreateSurface(id TileID, origin Point) (Surface, error) {
	return f(id, origin)
}
