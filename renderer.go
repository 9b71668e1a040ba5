package bitwalk

import "math"

// segmentRenderer draws walk segments into the tiles they touch.
type segmentRenderer struct {
	reg   *Registry
	grad  *GradientTable
	cfg   *Config
	stats *Stats
}

// segment draws prev→next for input byte b and returns the id of the tile
// containing next's position. The caller records it as next.Last.
//
// The segment always lands in the tile of its end point. When the previous
// segment ended in a different tile, the segment is drawn there as well, so
// that a stroke crossing a tile edge is complete on both sides.
func (r *segmentRenderer) segment(prev, next Walk, b byte) (TileID, error) {
	p0, p1 := prev.Pos(), next.Pos()

	if prev.HasLast {
		last := prev.Last
		r.reg.protect = &last
	}
	t1, err := r.reg.TileFor(p1.X, p1.Y)
	r.reg.protect = nil
	if err != nil {
		return TileID{}, err
	}

	style := Style{
		Color: r.grad.Shade(b).WithAlpha(r.cfg.StrokeAlpha),
		Width: r.cfg.StrokeWidth,
	}
	if err := r.draw(t1, p0, p1, style); err != nil {
		return TileID{}, err
	}

	if prev.HasLast && prev.Last != t1.ID {
		if t0, ok := r.reg.Lookup(prev.Last); ok {
			if err := r.draw(t0, p0, p1, style); err != nil {
				return TileID{}, err
			}
		}
	}

	if r.cfg.Normals {
		mid := p0.Lerp(p1, 0.5)
		half := Polar(next.Heading + math.Pi/2).Mul(r.cfg.NormalScale * r.cfg.StepLength)
		ns := Style{
			Color: r.grad.Complement(b).WithAlpha(r.cfg.NormalAlpha),
			Width: r.cfg.NormalWidth,
		}
		if err := r.draw(t1, mid.Sub(half), mid.Add(half), ns); err != nil {
			return TileID{}, err
		}
	}

	r.stats.Segments++
	return t1.ID, nil
}

// draw issues one line into t, converting the global end points to t's
// local space.
func (r *segmentRenderer) draw(t *Tile, p0, p1 Point, style Style) error {
	r.stats.DrawCalls++
	if err := t.Surface.DrawLine(t.Local(p0), t.Local(p1), style); err != nil {
		return &TileError{ID: t.ID, Op: "draw", Err: err}
	}
	return nil
}
