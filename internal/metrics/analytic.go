package metrics

import "math"

// ImagePositions returns the signed radial positions of the two point-lens
// images of a source at distance beta from the lens. plus lies on the source
// side, minus on the opposite side.
func ImagePositions(beta, einsteinRadius float64) (plus, minus float64) {
	d := math.Sqrt(beta*beta + 4*einsteinRadius*einsteinRadius)
	return (beta + d) / 2, (beta - d) / 2
}

// Magnification returns the total point-source magnification of both images.
// It diverges for a source exactly behind the lens.
func Magnification(beta, einsteinRadius float64) float64 {
	u := math.Abs(beta) / einsteinRadius
	if u == 0 {
		return math.Inf(1)
	}
	return (u*u + 2) / (u * math.Sqrt(u*u+4))
}
