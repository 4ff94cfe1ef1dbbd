package lens

import (
	"context"
	"fmt"
	"runtime"
)

// rowsPerChunk keeps goroutine overhead below the per-row work.
const rowsPerChunk = 16

// Result holds the fields produced by one run.
type Result struct {
	Params  Params
	Sampler string
	Grid    Grid
	Source  *Field
	Lensed  *Field
}

// Mapper computes lensed images. The zero value is not usable; use [NewMapper].
type Mapper struct {
	sampler Sampler
	workers int
}

type Option func(*Mapper)

// WithSampler selects the interpolation kernel.
func WithSampler(s Sampler) Option {
	return func(m *Mapper) {
		if s != nil {
			m.sampler = s
		}
	}
}

// WithWorkers sets how many goroutines share the rows of a run. 0 uses
// GOMAXPROCS and negative values run serially.
func WithWorkers(n int) Option {
	return func(m *Mapper) {
		if n == 0 {
			n = runtime.GOMAXPROCS(0)
		}
		m.workers = n
	}
}

func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{sampler: Nearest{}, workers: 1}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mapper) Sampler() Sampler { return m.sampler }
func (m *Mapper) Workers() int     { return m.workers }

// Map runs the lens for p. Parameters are validated before any computation.
func (m *Mapper) Map(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanceled, err)
	}

	g := NewGrid(p.GridSize)
	src := SourceField(g, p.SourceX, p.SourceY, p.SourceRadius)
	lensed := NewField(g.N)
	half := g.Half()

	parallelFor(g.N, m.workers, rowsPerChunk, func(start, end int) {
		for r := start; r < end; r++ {
			if ctx.Err() != nil {
				return
			}
			y := g.Coord(r)
			for c := 0; c < g.N; c++ {
				x := g.Coord(c)
				ax, ay := Deflection(x, y, p.EinsteinRadius)
				xs, ys := LensEquation(x, y, ax, ay)
				lensed.Set(r, c, m.sampler.Sample(src, xs+half, ys+half))
			}
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanceled, err)
	}

	return &Result{
		Params:  p,
		Sampler: m.sampler.Name(),
		Grid:    g,
		Source:  src,
		Lensed:  lensed,
	}, nil
}

// Map runs p with the default serial nearest-neighbour mapper.
func Map(p Params) (*Result, error) {
	return NewMapper().Map(context.Background(), p)
}
