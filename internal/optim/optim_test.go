package optim

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lenssim/internal/lens"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	gs := NewGridSearch([]string{"x", "y"}, [][]float64{Span(-4, 4, 9), Span(-4, 4, 9)})
	best, val, err := gs.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		dx, dy := p["x"]-2, p["y"]+1
		return dx*dx + dy*dy, nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"x": 2, "y": -1}, best)
	assert.Zero(t, val)
	assert.Equal(t, 81, gs.Evaluations())
}

func TestGridSearchSkipsFailures(t *testing.T) {
	gs := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	best, val, err := gs.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 3 {
			return 0, errors.New("boom")
		}
		return p["x"], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, best["x"])
	assert.Equal(t, 1.0, val)

	_, _, err = gs.Search(context.Background(), func(context.Context, map[string]float64) (float64, error) {
		return 0, errors.New("always")
	})
	assert.ErrorIs(t, err, ErrNoCandidate)

	_, _, err = NewGridSearch([]string{"x"}, nil).Search(context.Background(), nil)
	assert.Error(t, err)
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, _, err := gs.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, gs.Evaluations())
}

func TestSpan(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Span(0, 1, 3))
	assert.Equal(t, []float64{7}, Span(7, 9, 1))
}

func TestSSE(t *testing.T) {
	a, err := lens.FieldFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	b, err := lens.FieldFromRows([][]float64{{1, 0}, {3, 5}})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, SSE(a, b), 1e-12)
	assert.Zero(t, SSE(a, a))
}

func TestFitLensRecoversParameters(t *testing.T) {
	truth := lens.Params{GridSize: 60, EinsteinRadius: 15, SourceX: 10, SourceY: -5, SourceRadius: 6}
	mapper := lens.NewMapper()
	observed, err := lens.Map(truth)
	require.NoError(t, err)

	base := truth
	base.EinsteinRadius, base.SourceX, base.SourceY = 1, 0, 0

	ranges := map[string][]float64{
		"einstein_radius": {10, 15, 20},
		"source_x":        {5, 10, 15},
		"source_y":        {-5, 0, 5},
	}

	var log bytes.Buffer
	fit, err := FitLens(context.Background(), observed.Lensed, base, ranges, mapper, &log)
	require.NoError(t, err)

	assert.Equal(t, truth, fit.Params)
	assert.Zero(t, fit.SSE)
	assert.Equal(t, 27, fit.Evaluations)
	assert.Contains(t, log.String(), "Fit 27/27")
}

func TestFitLensRejectsBadRanges(t *testing.T) {
	observed := lens.NewField(10)
	base := lens.DefaultParams()

	_, err := FitLens(context.Background(), observed, base, map[string][]float64{"grid_size": {10}}, lens.NewMapper(), io.Discard)
	assert.Error(t, err)

	_, err = FitLens(context.Background(), observed, base, map[string][]float64{"mass": {1}}, lens.NewMapper(), io.Discard)
	assert.ErrorIs(t, err, lens.ErrUnknownParam)
}
