package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/lenssim/internal/config"
	"github.com/san-kum/lenssim/internal/export"
	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
	"github.com/san-kum/lenssim/internal/storage"
)

// Scenario defines a scripted sequence of lens runs
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun is a single run in a scenario. Parameters not given fall back
// to the named preset, or to the defaults when no preset is named.
type ScenarioRun struct {
	Name        string `yaml:"name"`
	Preset      string `yaml:"preset"`
	lens.Params `yaml:",inline"`
	Sampler     string `yaml:"sampler"`
	Save        bool   `yaml:"save"`
	Image       string `yaml:"image"`
}

func (r *ScenarioRun) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	base := lens.DefaultParams()
	if head.Preset != "" {
		cfg := config.GetPreset(head.Preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset %q", head.Preset)
		}
		base = cfg.Params()
	}

	type plain ScenarioRun
	raw := plain{Params: base}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = ScenarioRun(raw)
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, errors.New("scenario has no runs")
	}
	return &scenario, nil
}

// RunOutcome is the product of one scenario run.
type RunOutcome struct {
	Name    string
	RunID   string
	Result  *lens.Result
	Metrics map[string]float64
	Elapsed time.Duration
}

// RunScenario executes every run in order. Runs that name a sampler get
// their own mapper with the same worker count as mapper. Runs with save
// set require a store.
func RunScenario(ctx context.Context, scenario *Scenario, mapper *lens.Mapper, st *storage.Store, w io.Writer) ([]RunOutcome, error) {
	outcomes := make([]RunOutcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		fmt.Fprintf(w, "Running step %d/%d: %s\n", i+1, len(scenario.Runs), name)

		if err := lens.DefaultLimits.Check(run.Params); err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		m := mapper
		if run.Sampler != "" {
			s, err := lens.SamplerByName(run.Sampler)
			if err != nil {
				return outcomes, fmt.Errorf("run %d: %w", i+1, err)
			}
			m = lens.NewMapper(lens.WithSampler(s), lens.WithWorkers(mapper.Workers()))
		}

		start := time.Now()
		res, err := m.Map(ctx, run.Params)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}
		out := RunOutcome{
			Name:    name,
			Result:  res,
			Metrics: metrics.Evaluate(res, metrics.Default()),
			Elapsed: time.Since(start),
		}

		if run.Save {
			if st == nil {
				return outcomes, fmt.Errorf("run %d: save requested without a store", i+1)
			}
			out.RunID, err = st.Save(name, res, out.Elapsed, out.Metrics)
			if err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
		if run.Image != "" {
			if err := export.RenderPNG(res, run.Image, export.DefaultOptions()); err != nil {
				return outcomes, fmt.Errorf("run %d: %w", i+1, err)
			}
		}

		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// Sweep varies one named parameter over [Min, Max] in Steps evenly spaced
// values, holding the rest of Base fixed.
type Sweep struct {
	Param string
	Min   float64
	Max   float64
	Steps int
	Base  lens.Params
}

// SweepPoint holds the image statistics at one sweep value.
type SweepPoint struct {
	Value      float64
	PeakCount  float64
	FluxRatio  float64
	RingRadius float64
}

// Values returns the parameter values the sweep visits.
func (s Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep Sweep, mapper *lens.Mapper, w io.Writer) ([]SweepPoint, error) {
	p := sweep.Base
	if _, err := p.Get(sweep.Param); err != nil {
		return nil, err
	}

	ms := []metrics.Metric{metrics.NewPeakCount(), metrics.NewFluxRatio(), metrics.NewRingRadius()}
	values := sweep.Values()
	results := make([]SweepPoint, 0, len(values))

	for i, v := range values {
		if err := p.Set(sweep.Param, v); err != nil {
			return nil, err
		}

		res, err := mapper.Map(ctx, p)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		m := metrics.Evaluate(res, ms)
		results = append(results, SweepPoint{
			Value:      v,
			PeakCount:  m["peak_count"],
			FluxRatio:  m["flux_ratio"],
			RingRadius: m["ring_radius"],
		})

		fmt.Fprintf(w, "Sweep %d/%d: %s=%.4f\n", i+1, len(values), sweep.Param, v)
	}

	return results, nil
}

// MonteCarloConfig perturbs the source position of Base uniformly within
// ±Jitter on each axis.
type MonteCarloConfig struct {
	Base   lens.Params
	Jitter float64
	Trials int
	Seed   int64
}

type MonteCarloResult struct {
	TrialID   int
	SourceX   float64
	SourceY   float64
	PeakCount float64
	FluxRatio float64
}

// RunMonteCarlo executes trials with random source offsets. A zero seed
// uses the current time.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, mapper *lens.Mapper, w io.Writer) ([]MonteCarloResult, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ms := []metrics.Metric{metrics.NewPeakCount(), metrics.NewFluxRatio()}
	results := make([]MonteCarloResult, 0, cfg.Trials)

	for trial := 0; trial < cfg.Trials; trial++ {
		p := cfg.Base
		p.SourceX += (rng.Float64() - 0.5) * 2 * cfg.Jitter
		p.SourceY += (rng.Float64() - 0.5) * 2 * cfg.Jitter

		res, err := mapper.Map(ctx, p)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		m := metrics.Evaluate(res, ms)
		results = append(results, MonteCarloResult{
			TrialID:   trial,
			SourceX:   p.SourceX,
			SourceY:   p.SourceY,
			PeakCount: m["peak_count"],
			FluxRatio: m["flux_ratio"],
		})

		if (trial+1)%10 == 0 {
			fmt.Fprintf(w, "Monte Carlo: %d/%d trials complete\n", trial+1, cfg.Trials)
		}
	}

	return results, nil
}

// MonteCarloStats summarizes the trials: the fraction showing more than one
// image and the mean and standard deviation of the flux ratio.
func MonteCarloStats(results []MonteCarloResult) (multiple, meanFlux, stdFlux float64) {
	if len(results) == 0 {
		return 0, 0, 0
	}
	flux := make([]float64, len(results))
	count := 0
	for i, r := range results {
		flux[i] = r.FluxRatio
		if r.PeakCount > 1 {
			count++
		}
	}
	meanFlux, stdFlux = stat.MeanStdDev(flux, nil)
	if len(results) == 1 {
		stdFlux = 0
	}
	return float64(count) / float64(len(results)), meanFlux, stdFlux
}
