package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lenssim/internal/lens"
)

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		threshold float64
		want      []int
	}{
		{"empty", nil, 0, []int{}},
		{"single peak", []float64{0, 1, 0}, 0.5, []int{1}},
		{"plateau counted once", []float64{0, 1, 0, 2, 2, 0}, 0.5, []int{1, 3}},
		{"edges", []float64{3, 1, 2}, 0, []int{0, 2}},
		{"below threshold", []float64{0, 0.2, 0, 0.9, 0}, 0.5, []int{3}},
		{"monotone", []float64{1, 2, 3, 4}, 0, []int{3}},
		{"flat zero", []float64{0, 0, 0}, 0, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPeaks(tt.values, tt.threshold))
			assert.Equal(t, len(tt.want), CountPeaks(tt.values, tt.threshold))
		})
	}
}

func TestProfileAlongAxis(t *testing.T) {
	res, err := lens.Map(lens.Params{GridSize: 100, EinsteinRadius: 1e-6, SourceX: 10, SourceRadius: 10})
	require.NoError(t, err)

	p := Profile(res.Source, res.Grid, 1, 0)
	require.Len(t, p.Values, 100)
	assert.Equal(t, -50.0, p.Positions[0])
	assert.Equal(t, res.Source.Row(50), p.Values)

	diag := Profile(res.Source, res.Grid, 1, 1)
	assert.NotEmpty(t, diag.Values)
	assert.Len(t, diag.Positions, len(diag.Values))

	zero := Profile(res.Source, res.Grid, 0, 0)
	assert.Equal(t, p, zero)
}

func TestImageSplittingMatchesAnalyticPositions(t *testing.T) {
	params := lens.Params{GridSize: 200, EinsteinRadius: 50, SourceX: 50, SourceY: 0, SourceRadius: 20}
	res, err := lens.Map(params)
	require.NoError(t, err)

	dx, dy := SourceAxis(params)
	p := Profile(res.Lensed, res.Grid, dx, dy)
	peaks := FindPeaks(p.Values, res.Lensed.Mean())
	require.Len(t, peaks, 2)

	plus, minus := ImagePositions(50, 50)
	assert.InDelta(t, minus, p.Positions[peaks[0]], 1.5)
	assert.InDelta(t, plus, p.Positions[peaks[1]], 1.5)
}

func TestImagePositions(t *testing.T) {
	plus, minus := ImagePositions(0, 30)
	assert.Equal(t, 30.0, plus)
	assert.Equal(t, -30.0, minus)

	// Both images satisfy the lens equation beta = theta - thetaE^2/theta.
	beta, thetaE := 17.0, 42.0
	plus, minus = ImagePositions(beta, thetaE)
	for _, th := range []float64{plus, minus} {
		assert.InDelta(t, beta, th-thetaE*thetaE/th, 1e-9)
	}
}

func TestMagnification(t *testing.T) {
	assert.InDelta(t, 3/math.Sqrt(5), Magnification(50, 50), 1e-12)
	assert.True(t, math.IsInf(Magnification(0, 50), 1))
	assert.Greater(t, Magnification(10, 50), Magnification(60, 50))
	assert.InDelta(t, 1, Magnification(1e6, 1), 1e-6)
}

func TestSummarize(t *testing.T) {
	f, err := lens.FieldFromRows([][]float64{
		{0, 0.5},
		{1, 0.5},
	})
	require.NoError(t, err)

	s := Summarize(f)
	assert.Equal(t, 1.0, s.Max)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 0.5, s.Mean)
	assert.Equal(t, 2.0, s.Total)
	assert.Equal(t, 0.75, s.LitFraction)
}

func TestBrightnessRadius(t *testing.T) {
	g := lens.NewGrid(10)
	f := lens.NewField(10)
	assert.Equal(t, 0.0, BrightnessRadius(f, g))

	// (row 9, col 8) is (x, y) = (3, 4).
	f.Set(9, 8, 2)
	assert.InDelta(t, 5, BrightnessRadius(f, g), 1e-12)
}

func TestEvaluateDefaultMetrics(t *testing.T) {
	res, err := lens.Map(lens.DefaultParams())
	require.NoError(t, err)

	vals := Evaluate(res, Default())
	for _, name := range []string{"peak_count", "peak_flux", "mean_flux", "flux_ratio", "ring_radius", "magnification"} {
		assert.Contains(t, vals, name)
	}
	assert.GreaterOrEqual(t, vals["peak_count"], 2.0)
	assert.InDelta(t, 1.0, vals["peak_flux"], 1e-12)
	assert.Greater(t, vals["flux_ratio"], 0.0)
	assert.InDelta(t, 3/math.Sqrt(5), vals["magnification"], 1e-12)
	assert.Greater(t, vals["ring_radius"], 20.0)
}

func TestFluxRatioIdentity(t *testing.T) {
	res, err := lens.Map(lens.Params{GridSize: 100, EinsteinRadius: 1e-6, SourceRadius: 10})
	require.NoError(t, err)

	m := NewFluxRatio()
	m.Observe(res)
	assert.Equal(t, 1.0, m.Value())
	m.Reset()
	assert.Equal(t, 0.0, m.Value())
}

func TestAnalyticMagnificationCenteredSource(t *testing.T) {
	res, err := lens.Map(lens.Params{GridSize: 100, EinsteinRadius: 20, SourceRadius: 10})
	require.NoError(t, err)

	m := NewAnalyticMagnification()
	m.Observe(res)
	assert.Equal(t, 0.0, m.Value())
}
