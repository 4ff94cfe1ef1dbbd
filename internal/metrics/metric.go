package metrics

import (
	"math"

	"github.com/san-kum/lenssim/internal/lens"
)

// Metric reduces a lens result to a single number.
type Metric interface {
	Name() string
	Observe(res *lens.Result)
	Value() float64
	Reset()
}

// PeakCount counts images along the line through the lens and the source.
type PeakCount struct{ v float64 }

func NewPeakCount() *PeakCount { return &PeakCount{} }

func (m *PeakCount) Name() string { return "peak_count" }

func (m *PeakCount) Observe(res *lens.Result) {
	dx, dy := SourceAxis(res.Params)
	p := Profile(res.Lensed, res.Grid, dx, dy)
	m.v = float64(CountPeaks(p.Values, res.Lensed.Mean()))
}

func (m *PeakCount) Value() float64 { return m.v }
func (m *PeakCount) Reset()         { m.v = 0 }

type PeakFlux struct{ v float64 }

func NewPeakFlux() *PeakFlux { return &PeakFlux{} }

func (m *PeakFlux) Name() string             { return "peak_flux" }
func (m *PeakFlux) Observe(res *lens.Result) { m.v = res.Lensed.Max() }
func (m *PeakFlux) Value() float64           { return m.v }
func (m *PeakFlux) Reset()                   { m.v = 0 }

type MeanFlux struct{ v float64 }

func NewMeanFlux() *MeanFlux { return &MeanFlux{} }

func (m *MeanFlux) Name() string             { return "mean_flux" }
func (m *MeanFlux) Observe(res *lens.Result) { m.v = res.Lensed.Mean() }
func (m *MeanFlux) Value() float64           { return m.v }
func (m *MeanFlux) Reset()                   { m.v = 0 }

// FluxRatio is the total lensed flux over the total source flux, the sampled
// counterpart of the magnification.
type FluxRatio struct{ v float64 }

func NewFluxRatio() *FluxRatio { return &FluxRatio{} }

func (m *FluxRatio) Name() string { return "flux_ratio" }

func (m *FluxRatio) Observe(res *lens.Result) {
	total := res.Source.Sum()
	if total == 0 {
		m.v = 0
		return
	}
	m.v = res.Lensed.Sum() / total
}

func (m *FluxRatio) Value() float64 { return m.v }
func (m *FluxRatio) Reset()         { m.v = 0 }

// RingRadius tracks the brightness-weighted radius of the lensed light.
type RingRadius struct{ v float64 }

func NewRingRadius() *RingRadius { return &RingRadius{} }

func (m *RingRadius) Name() string             { return "ring_radius" }
func (m *RingRadius) Observe(res *lens.Result) { m.v = BrightnessRadius(res.Lensed, res.Grid) }
func (m *RingRadius) Value() float64           { return m.v }
func (m *RingRadius) Reset()                   { m.v = 0 }

// AnalyticMagnification reports the exact point-source magnification for the
// run, or 0 for a source directly behind the lens where it diverges.
type AnalyticMagnification struct{ v float64 }

func NewAnalyticMagnification() *AnalyticMagnification { return &AnalyticMagnification{} }

func (m *AnalyticMagnification) Name() string { return "magnification" }

func (m *AnalyticMagnification) Observe(res *lens.Result) {
	beta := math.Hypot(res.Params.SourceX, res.Params.SourceY)
	m.v = Magnification(beta, res.Params.EinsteinRadius)
	if math.IsInf(m.v, 0) {
		m.v = 0
	}
}

func (m *AnalyticMagnification) Value() float64 { return m.v }
func (m *AnalyticMagnification) Reset()         { m.v = 0 }

func Default() []Metric {
	return []Metric{
		NewPeakCount(),
		NewPeakFlux(),
		NewMeanFlux(),
		NewFluxRatio(),
		NewRingRadius(),
		NewAnalyticMagnification(),
	}
}

// Evaluate observes res with every metric and collects the values by name.
func Evaluate(res *lens.Result, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		m.Observe(res)
		out[m.Name()] = m.Value()
	}
	return out
}
