package geometry

import "math"

// InputModulus wraps x into [min, max).
func InputModulus(x, min, max float64) float64 {
	span := max - min
	if span <= 0 {
		return x
	}
	r := math.Mod(x-min, span)
	if r < 0 {
		r += span
	}
	return r + min
}

// AngleModulus wraps radians into (-π, π].
func AngleModulus(rad float64) float64 {
	r := math.Mod(rad+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// ShortestDelta returns the signed angle of magnitude at most π that takes
// from to to.
func ShortestDelta(from, to float64) float64 {
	return AngleModulus(to - from)
}
