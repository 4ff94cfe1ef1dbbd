package metrics

import (
	"math"

	"github.com/san-kum/lenssim/internal/lens"
)

// LineProfile is a field sampled along a line through the lens center.
type LineProfile struct {
	Positions []float64 // signed distance from the lens center
	Values    []float64
}

// Profile samples f along the line through the origin with direction
// (dx, dy), one sample per grid step. Samples that fall off the grid are
// skipped. A zero direction samples along the x axis.
func Profile(f *lens.Field, g lens.Grid, dx, dy float64) LineProfile {
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		dx, dy, norm = 1, 0, 1
	}
	ux, uy := dx/norm, dy/norm

	p := LineProfile{
		Positions: make([]float64, 0, g.N),
		Values:    make([]float64, 0, g.N),
	}
	for i := 0; i < g.N; i++ {
		t := g.Coord(i)
		col, okc := g.Index(t * ux)
		row, okr := g.Index(t * uy)
		if !okc || !okr {
			continue
		}
		p.Positions = append(p.Positions, t)
		p.Values = append(p.Values, f.At(row, col))
	}
	return p
}

// SourceAxis returns the direction from the lens center to the source.
func SourceAxis(p lens.Params) (dx, dy float64) {
	return p.SourceX, p.SourceY
}
