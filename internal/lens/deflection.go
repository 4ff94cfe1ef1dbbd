package lens

// Epsilon replaces r² at the lens center.
const Epsilon = 1e-9

// Deflection returns the point-mass deflection angle at image-plane position (x, y).
func Deflection(x, y, einsteinRadius float64) (ax, ay float64) {
	r2 := x*x + y*y
	if r2 == 0 {
		r2 = Epsilon
	}
	alpha := einsteinRadius * einsteinRadius / r2
	return alpha * x, alpha * y
}

// DeflectionField evaluates [Deflection] at every pixel of g.
func DeflectionField(g Grid, einsteinRadius float64) (ax, ay *Field) {
	ax, ay = NewField(g.N), NewField(g.N)
	for r := 0; r < g.N; r++ {
		y := g.Coord(r)
		for c := 0; c < g.N; c++ {
			dx, dy := Deflection(g.Coord(c), y, einsteinRadius)
			ax.Set(r, c, dx)
			ay.Set(r, c, dy)
		}
	}
	return ax, ay
}

// LensEquation traces an image-plane position back to the source plane.
func LensEquation(x, y, ax, ay float64) (xs, ys float64) {
	return x - ax, y - ay
}
