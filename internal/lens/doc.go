// Package lens implements a point-mass gravitational lens on a square pixel grid.
//
// The package maps a Gaussian background source through the thin-lens
// equation and returns both the unlensed and the lensed brightness fields:
//
//   - [Params]: the run configuration (grid size, Einstein radius, source)
//   - [Grid]: pixel index to plane coordinate mapping
//   - [Field]: an N×N brightness array
//   - [Sampler]: interpolation kernel used when resampling the source plane
//   - [Mapper]: orchestrates a single run
//
// # Example
//
//	p := lens.Params{GridSize: 200, EinsteinRadius: 50, SourceX: 50, SourceRadius: 20}
//	res, err := lens.NewMapper().Map(ctx, p)
//	if err != nil {
//	    return err
//	}
//	peak := res.Lensed.Max()
//
// # Numerics
//
// The deflection α = θ_E²/r² · (x, y) is undefined at the lens center. The
// squared radius is replaced by [Epsilon] there, which yields a zero
// deflection for the center pixel rather than a NaN.
//
// Rays that land outside the sampled source plane carry no flux.
//
// # Thread Safety
//
// A Mapper holds no per-run state and may be shared by goroutines. Every call
// to [Mapper.Map] allocates its own fields.
package lens
