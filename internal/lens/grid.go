package lens

import (
	"math"
	"strconv"
)

// Grid maps pixel indices in [0, N) to plane coordinates in [-N/2, N/2).
// Source and image planes share one Grid.
type Grid struct {
	N    int
	half float64
}

func NewGrid(n int) Grid {
	return Grid{N: n, half: float64(n) / 2}
}

// Half returns N/2.
func (g Grid) Half() float64 {
	return g.half
}

// Coord returns the plane coordinate of pixel index i.
func (g Grid) Coord(i int) float64 {
	return float64(i) - g.half
}

// Index quantizes a plane coordinate to the nearest pixel index, rounding
// halves to even. ok is false when the index falls outside the grid.
func (g Grid) Index(x float64) (idx int, ok bool) {
	f := math.RoundToEven(x + g.half)
	if !(f >= 0 && f < float64(g.N)) {
		return 0, false
	}
	return int(f), true
}

// Extent returns the sampled coordinate range as used for plot axes.
func (g Grid) Extent() (min, max float64) {
	return -g.half, g.half
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
