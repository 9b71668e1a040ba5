package bitwalk

// GradientTable maps byte values to stroke colors.
//
// The table is built once by interpolating linearly, channel by channel in
// RGB space, between a start and an end color across 256 steps. Every entry
// carries the same alpha. Lookups are pure and never fail.
type GradientTable struct {
	colors [256]RGBA
}

// NewGradientTable precomputes the table. The alpha components of start and
// end are ignored; alpha is applied to every entry instead.
func NewGradientTable(start, end RGBA, alpha float64) *GradientTable {
	g := &GradientTable{}
	for i := range g.colors {
		c := interpolateColorRGB(start, end, float64(i)/255)
		c.A = alpha
		g.colors[i] = c
	}
	return g
}

// Shade returns the color for byte value v.
func (g *GradientTable) Shade(v byte) RGBA {
	return g.colors[v]
}

// Complement returns the color used for normal decorations of byte value v.
// It looks up (v+128) mod 255, so 127 maps to 0 rather than 255.
func (g *GradientTable) Complement(v byte) RGBA {
	return g.colors[(int(v)+128)%255]
}

// interpolateColorRGB interpolates the color channels of c1 and c2 directly
// in (non-linear) RGB space.
func interpolateColorRGB(c1, c2 RGBA, t float64) RGBA {
	return RGBA{
		R: c1.R + (c2.R-c1.R)*t,
		G: c1.G + (c2.G-c1.G)*t,
		B: c1.B + (c2.B-c1.B)*t,
	}
}
