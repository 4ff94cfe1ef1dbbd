package lens

import "math"

// Gaussian evaluates the source brightness at (x, y).
func Gaussian(x, y, cx, cy, sigma float64) float64 {
	dx, dy := x-cx, y-cy
	return math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
}

// SourceField samples an isotropic Gaussian source on g. The source width is
// radius/3.
func SourceField(g Grid, cx, cy, radius float64) *Field {
	f := NewField(g.N)
	sigma := radius / 3
	for r := 0; r < g.N; r++ {
		y := g.Coord(r)
		for c := 0; c < g.N; c++ {
			f.Set(r, c, Gaussian(g.Coord(c), y, cx, cy, sigma))
		}
	}
	return f
}
