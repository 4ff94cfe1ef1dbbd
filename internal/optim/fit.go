package optim

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lenssim/internal/lens"
)

// Span returns n evenly spaced values from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

type FitResult struct {
	Params      lens.Params
	SSE         float64
	Evaluations int
}

// SSE is the sum of squared pixel differences between two fields of equal size.
func SSE(a, b *lens.Field) float64 {
	var d mat.Dense
	d.Sub(a.Dense(), b.Dense())
	n := mat.Norm(&d, 2)
	return n * n
}

// FitLens searches ranges for the parameters whose lensed image best matches
// observed. Parameters not in ranges keep their value from base; the grid
// size always follows observed. Progress lines go to w.
func FitLens(ctx context.Context, observed *lens.Field, base lens.Params, ranges map[string][]float64, mapper *lens.Mapper, w io.Writer) (FitResult, error) {
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		if name == "grid_size" {
			return FitResult{}, fmt.Errorf("optim: grid_size is fixed by the observed image")
		}
		if _, err := base.Get(name); err != nil {
			return FitResult{}, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([][]float64, len(names))
	total := 1
	for i, name := range names {
		values[i] = ranges[name]
		total *= len(values[i])
	}

	base.GridSize = observed.N()
	build := func(assign map[string]float64) lens.Params {
		p := base
		for k, v := range assign {
			_ = p.Set(k, v)
		}
		return p
	}

	done := 0
	bestSSE := math.Inf(1)
	objective := func(ctx context.Context, assign map[string]float64) (float64, error) {
		res, err := mapper.Map(ctx, build(assign))
		done++
		if err != nil {
			return 0, err
		}
		sse := SSE(res.Lensed, observed)
		bestSSE = math.Min(bestSSE, sse)
		if done%25 == 0 || done == total {
			fmt.Fprintf(w, "Fit %d/%d: best sse=%.6g\n", done, total, bestSSE)
		}
		return sse, nil
	}

	gs := NewGridSearch(names, values)
	best, sse, err := gs.Search(ctx, objective)
	if err != nil {
		return FitResult{}, err
	}

	return FitResult{
		Params:      build(best),
		SSE:         sse,
		Evaluations: gs.Evaluations(),
	}, nil
}
