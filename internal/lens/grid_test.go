package lens

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridCoordIndexRoundTrip(t *testing.T) {
	for _, n := range []int{100, 101, 200, 333} {
		g := NewGrid(n)
		for i := 0; i < n; i++ {
			idx, ok := g.Index(g.Coord(i))
			require.True(t, ok, "n=%d i=%d", n, i)
			assert.Equal(t, i, idx)
		}
	}
}

func TestGridCoordinates(t *testing.T) {
	g := NewGrid(200)
	assert.Equal(t, -100.0, g.Coord(0))
	assert.Equal(t, 0.0, g.Coord(100))
	assert.Equal(t, 99.0, g.Coord(199))

	min, max := g.Extent()
	assert.Equal(t, -100.0, min)
	assert.Equal(t, 100.0, max)

	odd := NewGrid(5)
	assert.Equal(t, -2.5, odd.Coord(0))
	assert.Equal(t, 1.5, odd.Coord(4))
}

func TestGridIndexOutOfRange(t *testing.T) {
	g := NewGrid(200)

	_, ok := g.Index(-100.6)
	assert.False(t, ok)
	_, ok = g.Index(99.6)
	assert.False(t, ok)
	_, ok = g.Index(math.Inf(1))
	assert.False(t, ok)
	_, ok = g.Index(math.NaN())
	assert.False(t, ok)

	idx, ok := g.Index(-100.4)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestGridIndexRoundsHalfToEven(t *testing.T) {
	g := NewGrid(200)

	idx, _ := g.Index(-22.5) // 77.5
	assert.Equal(t, 78, idx)
	idx, _ = g.Index(-21.5) // 78.5
	assert.Equal(t, 78, idx)
}

func TestDeflectionSymmetry(t *testing.T) {
	points := [][2]float64{{1, 0}, {3, 4}, {-7, 2}, {0.5, -0.25}, {120, -80}}
	for _, p := range points {
		ax, ay := Deflection(p[0], p[1], 50)
		bx, by := Deflection(-p[0], -p[1], 50)
		assert.Equal(t, -ax, bx)
		assert.Equal(t, -ay, by)
	}
}

func TestDeflectionMagnitude(t *testing.T) {
	thetaE := 40.0
	prev := math.Inf(1)
	for _, r := range []float64{1, 2, 5, 10, 40, 100, 300} {
		ax, ay := Deflection(r*0.6, r*0.8, thetaE)
		mag := math.Hypot(ax, ay)
		assert.InDelta(t, thetaE*thetaE/r, mag, 1e-9*thetaE*thetaE/r)
		assert.Less(t, mag, prev)
		prev = mag
	}

	prev = 0
	for _, te := range []float64{1, 10, 50, 200} {
		ax, ay := Deflection(30, 40, te)
		mag := math.Hypot(ax, ay)
		assert.Greater(t, mag, prev)
		prev = mag
	}
}

func TestDeflectionAtCenter(t *testing.T) {
	ax, ay := Deflection(0, 0, 50)
	assert.False(t, math.IsNaN(ax) || math.IsNaN(ay))
	assert.Equal(t, 0.0, ax)
	assert.Equal(t, 0.0, ay)
}

func TestDeflectionField(t *testing.T) {
	g := NewGrid(10)
	ax, ay := DeflectionField(g, 5)
	require.Equal(t, 10, ax.N())

	x, y := g.Coord(7), g.Coord(2)
	ex, ey := Deflection(x, y, 5)
	assert.Equal(t, ex, ax.At(2, 7))
	assert.Equal(t, ey, ay.At(2, 7))
}

func TestLensEquationOnEinsteinRing(t *testing.T) {
	// Points on the Einstein ring map back to the lens center.
	thetaE := 25.0
	for _, ang := range []float64{0, 0.7, 2.1, 4.0} {
		x, y := thetaE*math.Cos(ang), thetaE*math.Sin(ang)
		ax, ay := Deflection(x, y, thetaE)
		xs, ys := LensEquation(x, y, ax, ay)
		assert.InDelta(t, 0, xs, 1e-9)
		assert.InDelta(t, 0, ys, 1e-9)
	}
}

func TestSamplerByName(t *testing.T) {
	s, err := SamplerByName("")
	require.NoError(t, err)
	assert.Equal(t, "nearest", s.Name())

	s, err = SamplerByName("bilinear")
	require.NoError(t, err)
	assert.Equal(t, "bilinear", s.Name())

	_, err = SamplerByName("bicubic")
	assert.ErrorIs(t, err, ErrUnknownSampler)

	assert.Equal(t, []string{"bilinear", "nearest"}, SamplerNames())
}

func TestBilinearInterpolates(t *testing.T) {
	f, err := FieldFromRows([][]float64{
		{0, 1},
		{2, 3},
	})
	require.NoError(t, err)

	b := Bilinear{}
	assert.InDelta(t, 1.5, b.Sample(f, 0.5, 0.5), 1e-12)
	assert.InDelta(t, 0.5, b.Sample(f, 0.5, 0), 1e-12)
	assert.Equal(t, 3.0, b.Sample(f, 1, 1))
	assert.Equal(t, 0.0, b.Sample(f, 1.01, 0))
	assert.Equal(t, 0.0, b.Sample(f, -0.01, 0))
}

func TestFieldFromRowsRejectsRagged(t *testing.T) {
	_, err := FieldFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrParameterBounds)

	_, err = FieldFromRows(nil)
	assert.ErrorIs(t, err, ErrParameterBounds)
}

func TestFieldStats(t *testing.T) {
	f, err := FieldFromRows([][]float64{
		{0, 4},
		{2, 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 4.0, f.Max())
	assert.Equal(t, 0.0, f.Min())
	assert.Equal(t, 8.0, f.Sum())
	assert.Equal(t, 2.0, f.Mean())
	assert.Equal(t, []float64{2, 2}, f.Row(1))

	c := f.Clone()
	c.Set(0, 0, 1)
	assert.Equal(t, 0.0, f.At(0, 0))
	assert.False(t, f.Equal(c))
}
