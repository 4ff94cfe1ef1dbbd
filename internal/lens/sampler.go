package lens

import (
	"fmt"
	"math"
	"sort"
)

// Sampler reads the source field at a fractional pixel position (col, row).
// Positions that fall outside the sampled extent must return 0.
type Sampler interface {
	Name() string
	Sample(src *Field, col, row float64) float64
}

// Nearest rounds to the closest pixel, halves to even.
type Nearest struct{}

func (Nearest) Name() string { return "nearest" }

func (Nearest) Sample(src *Field, col, row float64) float64 {
	n := float64(src.N())
	c, r := math.RoundToEven(col), math.RoundToEven(row)
	if !(c >= 0 && c < n && r >= 0 && r < n) {
		return 0
	}
	return src.At(int(r), int(c))
}

// Bilinear interpolates between the four surrounding pixels. A position whose
// neighbourhood is not fully inside the grid carries no flux.
type Bilinear struct{}

func (Bilinear) Name() string { return "bilinear" }

func (Bilinear) Sample(src *Field, col, row float64) float64 {
	n := float64(src.N())
	if !(col >= 0 && col <= n-1 && row >= 0 && row <= n-1) {
		return 0
	}
	c0, r0 := math.Floor(col), math.Floor(row)
	fc, fr := col-c0, row-r0
	ic, ir := int(c0), int(r0)
	ic1, ir1 := ic+1, ir+1
	last := src.N() - 1
	if ic1 > last {
		ic1 = last
	}
	if ir1 > last {
		ir1 = last
	}

	top := src.At(ir, ic)*(1-fc) + src.At(ir, ic1)*fc
	bottom := src.At(ir1, ic)*(1-fc) + src.At(ir1, ic1)*fc
	return top*(1-fr) + bottom*fr
}

var samplers = map[string]func() Sampler{
	"nearest":  func() Sampler { return Nearest{} },
	"bilinear": func() Sampler { return Bilinear{} },
}

// DefaultSampler is the kernel used when none is configured.
const DefaultSampler = "nearest"

func SamplerByName(name string) (Sampler, error) {
	if name == "" {
		name = DefaultSampler
	}
	fn, ok := samplers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownSampler, name, SamplerNames())
	}
	return fn(), nil
}

func SamplerNames() []string {
	names := make([]string, 0, len(samplers))
	for name := range samplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
