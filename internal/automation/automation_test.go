package automation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/storage"
)

const scenarioYAML = `
name: demo
description: ring then arcs
runs:
  - name: ring
    preset: ring
    grid_size: 100
    save: true
  - name: offset
    source_x: 30
    sampler: bilinear
  - source_radius: 10
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "demo", sc.Name)
	require.Len(t, sc.Runs, 3)

	ring := sc.Runs[0]
	assert.Equal(t, "ring", ring.Preset)
	assert.Equal(t, 100, ring.GridSize)
	assert.Equal(t, 0.0, ring.SourceX)
	assert.Equal(t, 50.0, ring.EinsteinRadius)
	assert.True(t, ring.Save)

	offset := sc.Runs[1]
	assert.Equal(t, 30.0, offset.SourceX)
	assert.Equal(t, lens.DefaultGridSize, offset.GridSize)
	assert.Equal(t, "bilinear", offset.Sampler)
	assert.False(t, offset.Save)

	assert.Equal(t, 10.0, sc.Runs[2].SourceRadius)
	assert.Equal(t, lens.DefaultSourceX, sc.Runs[2].SourceX)
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	assert.Error(t, err)

	_, err = ParseScenario([]byte("runs:\n  - preset: nope\n"))
	assert.ErrorContains(t, err, "nope")

	_, err = ParseScenario([]byte("runs: [\n"))
	assert.Error(t, err)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Runs, 3)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	st := storage.New(filepath.Join(dir, "runs"))
	require.NoError(t, st.Init())

	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	sc.Runs[1].Image = filepath.Join(dir, "offset.png")

	var log bytes.Buffer
	out, err := RunScenario(context.Background(), sc, lens.NewMapper(lens.WithWorkers(2)), st, &log)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "ring", out[0].Name)
	assert.NotEmpty(t, out[0].RunID)
	assert.Empty(t, out[1].RunID)
	assert.Equal(t, "bilinear", out[1].Result.Sampler)
	assert.Equal(t, "nearest", out[2].Result.Sampler)
	assert.Equal(t, "run-3", out[2].Name)
	assert.Contains(t, out[0].Metrics, "flux_ratio")

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ring", runs[0].Name)

	_, err = os.Stat(sc.Runs[1].Image)
	assert.NoError(t, err)

	assert.Equal(t, 3, strings.Count(log.String(), "Running step"))
}

func TestRunScenarioErrors(t *testing.T) {
	mapper := lens.NewMapper()

	sc := &Scenario{Runs: []ScenarioRun{{Params: lens.DefaultParams(), Save: true}}}
	_, err := RunScenario(context.Background(), sc, mapper, nil, io.Discard)
	assert.ErrorContains(t, err, "without a store")

	bad := lens.DefaultParams()
	bad.GridSize = 1000
	sc = &Scenario{Runs: []ScenarioRun{{Params: lens.DefaultParams()}, {Params: bad}}}
	out, err := RunScenario(context.Background(), sc, mapper, nil, io.Discard)
	assert.True(t, errors.Is(err, lens.ErrParameterBounds))
	assert.Len(t, out, 1)

	sc = &Scenario{Runs: []ScenarioRun{{Params: lens.DefaultParams(), Sampler: "cubic"}}}
	_, err = RunScenario(context.Background(), sc, mapper, nil, io.Discard)
	assert.True(t, errors.Is(err, lens.ErrUnknownSampler))
}

func TestSweepValues(t *testing.T) {
	assert.Equal(t, []float64{10, 20, 30}, Sweep{Min: 10, Max: 30, Steps: 3}.Values())
	assert.Equal(t, []float64{7}, Sweep{Min: 7, Max: 30, Steps: 1}.Values())
}

func TestRunSweepSplitsImage(t *testing.T) {
	sweep := Sweep{
		Param: "einstein_radius",
		Min:   1e-6,
		Max:   50,
		Steps: 2,
		Base:  lens.DefaultParams(),
	}

	var log bytes.Buffer
	points, err := RunSweep(context.Background(), sweep, lens.NewMapper(), &log)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 1.0, points[0].PeakCount)
	assert.GreaterOrEqual(t, points[1].PeakCount, 2.0)
	assert.InDelta(t, 1.0, points[0].FluxRatio, 1e-12)
	assert.Greater(t, points[1].RingRadius, points[0].RingRadius)
	assert.Contains(t, log.String(), "Sweep 2/2: einstein_radius=50.0000")

	sweep.Param = "mass"
	_, err = RunSweep(context.Background(), sweep, lens.NewMapper(), io.Discard)
	assert.True(t, errors.Is(err, lens.ErrUnknownParam))
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := MonteCarloConfig{
		Base:   lens.Params{GridSize: 80, EinsteinRadius: 15, SourceX: 0, SourceY: 0, SourceRadius: 6},
		Jitter: 10,
		Trials: 12,
		Seed:   42,
	}
	mapper := lens.NewMapper()

	var log bytes.Buffer
	first, err := RunMonteCarlo(context.Background(), cfg, mapper, &log)
	require.NoError(t, err)
	require.Len(t, first, 12)
	assert.Contains(t, log.String(), "10/12 trials complete")

	second, err := RunMonteCarlo(context.Background(), cfg, mapper, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, r := range first {
		assert.LessOrEqual(t, r.SourceX, 10.0)
		assert.GreaterOrEqual(t, r.SourceX, -10.0)
	}

	multiple, mean, std := MonteCarloStats(first)
	assert.GreaterOrEqual(t, multiple, 0.0)
	assert.LessOrEqual(t, multiple, 1.0)
	assert.Greater(t, mean, 0.0)
	assert.GreaterOrEqual(t, std, 0.0)

	m, mean, std := MonteCarloStats(nil)
	assert.Zero(t, m)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
