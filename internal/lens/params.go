package lens

import (
	"math"
)

const (
	DefaultGridSize       = 200
	DefaultEinsteinRadius = 50.0
	DefaultSourceX        = 50.0
	DefaultSourceY        = 0.0
	DefaultSourceRadius   = 20.0

	// MaxGridSize bounds the run time of a single Map call.
	MaxGridSize = 4096
)

// Params is the configuration record for a single run. All lengths are in pixels.
type Params struct {
	GridSize       int     `yaml:"grid_size" json:"grid_size"`
	EinsteinRadius float64 `yaml:"einstein_radius" json:"einstein_radius"`
	SourceX        float64 `yaml:"source_x" json:"source_x"`
	SourceY        float64 `yaml:"source_y" json:"source_y"`
	SourceRadius   float64 `yaml:"source_radius" json:"source_radius"`
}

func DefaultParams() Params {
	return Params{
		GridSize:       DefaultGridSize,
		EinsteinRadius: DefaultEinsteinRadius,
		SourceX:        DefaultSourceX,
		SourceY:        DefaultSourceY,
		SourceRadius:   DefaultSourceRadius,
	}
}

// Sigma is the Gaussian width of the source.
func (p Params) Sigma() float64 {
	return p.SourceRadius / 3
}

// Validate rejects parameters for which the mapping is undefined.
// It does not apply the interactive ranges; see [Limits.Check].
func (p Params) Validate() error {
	if p.GridSize <= 0 {
		return &ValidationError{Field: "grid_size", Value: float64(p.GridSize), Reason: "must be positive"}
	}
	if p.GridSize > MaxGridSize {
		return &ValidationError{Field: "grid_size", Value: float64(p.GridSize), Reason: "exceeds maximum grid size"}
	}

	reals := []struct {
		name     string
		v        float64
		positive bool
	}{
		{"einstein_radius", p.EinsteinRadius, true},
		{"source_x", p.SourceX, false},
		{"source_y", p.SourceY, false},
		{"source_radius", p.SourceRadius, true},
	}
	for _, r := range reals {
		if math.IsNaN(r.v) || math.IsInf(r.v, 0) {
			return &ValidationError{Field: r.name, Value: r.v, Reason: "must be finite"}
		}
		if r.positive && r.v <= 0 {
			return &ValidationError{Field: r.name, Value: r.v, Reason: "must be positive"}
		}
	}
	return nil
}

// Range is a closed interval with a slider step.
type Range struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Snap moves v to the nearest step above Min and clamps it into the range.
func (r Range) Snap(v float64) float64 {
	if r.Step <= 0 {
		return r.Clamp(v)
	}
	n := math.Round((v - r.Min) / r.Step)
	return r.Clamp(r.Min + n*r.Step)
}

// Limits holds the ranges accepted from user-facing inputs.
type Limits struct {
	GridSize       Range
	EinsteinRadius Range
	SourceX        Range
	SourceY        Range
	SourceRadius   Range
}

var DefaultLimits = Limits{
	GridSize:       Range{Min: 100, Max: 500, Step: 20},
	EinsteinRadius: Range{Min: 10, Max: 200, Step: 5},
	SourceX:        Range{Min: -150, Max: 150, Step: 5},
	SourceY:        Range{Min: -150, Max: 150, Step: 5},
	SourceRadius:   Range{Min: 5, Max: 50, Step: 1},
}

// Check validates p and then applies the ranges in l.
func (l Limits) Check(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{"grid_size", float64(p.GridSize), l.GridSize},
		{"einstein_radius", p.EinsteinRadius, l.EinsteinRadius},
		{"source_x", p.SourceX, l.SourceX},
		{"source_y", p.SourceY, l.SourceY},
		{"source_radius", p.SourceRadius, l.SourceRadius},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return &ValidationError{
				Field:  c.name,
				Value:  c.v,
				Reason: "outside range [" + formatFloat(c.r.Min) + ", " + formatFloat(c.r.Max) + "]",
			}
		}
	}
	return nil
}

// Clamp forces every parameter of p into its range.
func (l Limits) Clamp(p Params) Params {
	return Params{
		GridSize:       int(l.GridSize.Clamp(float64(p.GridSize))),
		EinsteinRadius: l.EinsteinRadius.Clamp(p.EinsteinRadius),
		SourceX:        l.SourceX.Clamp(p.SourceX),
		SourceY:        l.SourceY.Clamp(p.SourceY),
		SourceRadius:   l.SourceRadius.Clamp(p.SourceRadius),
	}
}
