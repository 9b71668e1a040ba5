package bitwalk

import "math"

// Walk is the state of the random walk: the current position and heading,
// and the tile the previous segment ended in.
//
// The zero value is the initial state: origin, heading 0, no previous tile.
type Walk struct {
	X, Y    float64
	Heading float64 // radians

	// Last is the tile that received the previous segment. It is only
	// meaningful when HasLast is true.
	Last    TileID
	HasLast bool
}

// Pos returns the current position.
func (w Walk) Pos() Point {
	return Point{X: w.X, Y: w.Y}
}

// Step advances the walk by a single input bit. A set bit turns by
// +dTheta, a clear bit by -dTheta; the position then moves dx along the
// new heading. Step never touches Last.
func Step(w Walk, bit uint8, dTheta, dx float64) Walk {
	if bit&1 == 1 {
		w.Heading += dTheta
	} else {
		w.Heading -= dTheta
	}
	w.X += math.Cos(w.Heading) * dx
	w.Y += math.Sin(w.Heading) * dx
	return w
}

// StepByte applies the eight bits of b, least-significant first, and
// returns the final state along with the position after every step.
func StepByte(w Walk, b byte, dTheta, dx float64) (Walk, [8]Point) {
	var pts [8]Point
	for i := range 8 {
		w = Step(w, (b>>i)&1, dTheta, dx)
		pts[i] = w.Pos()
	}
	return w, pts
}
