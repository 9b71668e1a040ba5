package bitwalk

import (
	"cmp"
	"container/list"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
)

// TileID identifies a square region of the plane. Tile (0, 0) is centered
// on the origin.
type TileID struct {
	I, J int
}

func (id TileID) String() string {
	return fmt.Sprintf("(%d,%d)", id.I, id.J)
}

// Tile is one lazily created square of the drawing plane.
type Tile struct {
	ID TileID

	// Origin is the screen offset of the tile's top-left corner, including
	// one border gap per tile index step.
	Origin Point

	Surface Surface

	size float64
	elem *list.Element // position in the registry's recency list, if bounded
}

// Local maps a global point into the tile's local coordinate space.
func (t *Tile) Local(p Point) Point {
	return Point{
		X: p.X - (float64(t.ID.I-1)*t.size + t.size/2),
		Y: p.Y - (float64(t.ID.J-1)*t.size + t.size/2),
	}
}

// Registry maps tile ids to tiles, creating them on first use.
//
// By default the registry only grows. With a non-zero limit it becomes a
// least-recently-used cache: when an insertion pushes it over the limit,
// the tile resolved longest ago is dropped, handed to the evict callback,
// and its surface closed if it implements io.Closer. A later visit to an
// evicted id creates a fresh tile.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	size    float64
	border  float64
	factory SurfaceFactory
	logger  *slog.Logger

	tiles map[TileID]*Tile

	limit   int
	recent  *list.List // front is most recently resolved
	onEvict func(*Tile)
	protect *TileID

	created int
	evicted int
}

// NewRegistry returns an empty, unbounded registry for tiles of the given
// side length separated by border on screen.
func NewRegistry(size, border float64, factory SurfaceFactory) *Registry {
	return &Registry{
		size:    size,
		border:  border,
		factory: factory,
		logger:  Logger(),
		tiles:   make(map[TileID]*Tile),
	}
}

// SetLimit bounds the registry to n tiles (0 means unbounded). onEvict may
// be nil. Tiles already present are ranked in unspecified order.
func (r *Registry) SetLimit(n int, onEvict func(*Tile)) {
	r.limit = n
	r.onEvict = onEvict
	if n == 0 {
		r.recent = nil
		for _, t := range r.tiles {
			t.elem = nil
		}
		return
	}
	if r.recent == nil {
		r.recent = list.New()
		for _, t := range r.tiles {
			t.elem = r.recent.PushBack(t)
		}
	}
}

// IDFor returns the id of the tile containing the global point (x, y).
func (r *Registry) IDFor(x, y float64) TileID {
	half := r.size / 2
	return TileID{
		I: int(math.Ceil((x - half) / r.size)),
		J: int(math.Ceil((y - half) / r.size)),
	}
}

// Origin returns the screen offset of tile id.
func (r *Registry) Origin(id TileID) Point {
	half := r.size / 2
	return Point{
		X: float64(id.I)*r.size - half + float64(id.I)*r.border,
		Y: float64(id.J)*r.size - half + float64(id.J)*r.border,
	}
}

// TileFor returns the tile containing the global point (x, y), creating it
// through the surface factory on first use. A factory failure is returned
// as a *TileError and leaves the registry unchanged.
func (r *Registry) TileFor(x, y float64) (*Tile, error) {
	id := r.IDFor(x, y)
	if t, ok := r.tiles[id]; ok {
		if t.elem != nil {
			r.recent.MoveToFront(t.elem)
		}
		return t, nil
	}

	origin := r.Origin(id)
	s, err := r.factory.CreateSurface(id, origin)
	if err != nil {
		return nil, &TileError{ID: id, Op: "create", Err: err}
	}

	t := &Tile{ID: id, Origin: origin, Surface: s, size: r.size}
	r.tiles[id] = t
	r.created++
	r.logger.Debug("bitwalk: tile created", "tile", id, "x", origin.X, "y", origin.Y)

	if r.recent != nil {
		t.elem = r.recent.PushFront(t)
		r.evictOverflow()
	}
	return t, nil
}

// evictOverflow drops least recently used tiles until the limit holds.
// The front tile (just resolved) and the protected tile are never dropped.
func (r *Registry) evictOverflow() {
	e := r.recent.Back()
	for len(r.tiles) > r.limit && e != nil && e != r.recent.Front() {
		prev := e.Prev()
		t := e.Value.(*Tile)
		if r.protect == nil || *r.protect != t.ID {
			r.evict(t)
		}
		e = prev
	}
}

func (r *Registry) evict(t *Tile) {
	r.recent.Remove(t.elem)
	t.elem = nil
	delete(r.tiles, t.ID)
	r.evicted++
	r.logger.Debug("bitwalk: tile evicted", "tile", t.ID)

	if r.onEvict != nil {
		r.onEvict(t)
	}
	if c, ok := t.Surface.(io.Closer); ok {
		if err := c.Close(); err != nil {
			r.logger.Warn("bitwalk: closing evicted tile", "tile", t.ID, "err", err)
		}
	}
}

// Lookup returns the tile with the given id, if it exists. It does not
// create tiles or affect eviction order.
func (r *Registry) Lookup(id TileID) (*Tile, bool) {
	t, ok := r.tiles[id]
	return t, ok
}

// Len returns the number of live tiles.
func (r *Registry) Len() int {
	return len(r.tiles)
}

// Tiles returns the live tiles ordered by row, then column.
func (r *Registry) Tiles() []*Tile {
	out := make([]*Tile, 0, len(r.tiles))
	for _, t := range r.tiles {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Tile) int {
		if c := cmp.Compare(a.ID.J, b.ID.J); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.I, b.ID.I)
	})
	return out
}

// IDs returns the ids of the live tiles in the order of Tiles.
func (r *Registry) IDs() []TileID {
	tiles := r.Tiles()
	ids := make([]TileID, len(tiles))
	for i, t := range tiles {
		ids[i] = t.ID
	}
	return ids
}
