package metrics

import (
	"math"

	"github.com/san-kum/lenssim/internal/lens"
)

// litThreshold is the brightness above which a pixel counts as lit.
const litThreshold = 1e-3

type Summary struct {
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	Mean        float64 `json:"mean"`
	Total       float64 `json:"total"`
	LitFraction float64 `json:"lit_fraction"`
}

func Summarize(f *lens.Field) Summary {
	n := f.N()
	lit := 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if f.At(r, c) > litThreshold {
				lit++
			}
		}
	}
	return Summary{
		Max:         f.Max(),
		Min:         f.Min(),
		Mean:        f.Mean(),
		Total:       f.Sum(),
		LitFraction: float64(lit) / float64(n*n),
	}
}

// BrightnessRadius is the brightness-weighted mean distance from the lens center.
func BrightnessRadius(f *lens.Field, g lens.Grid) float64 {
	var wsum, rsum float64
	for r := 0; r < g.N; r++ {
		y := g.Coord(r)
		for c := 0; c < g.N; c++ {
			v := f.At(r, c)
			if v == 0 {
				continue
			}
			wsum += v
			rsum += v * math.Hypot(g.Coord(c), y)
		}
	}
	if wsum == 0 {
		return 0
	}
	return rsum / wsum
}
