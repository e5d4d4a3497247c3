// Package geometry provides planar rotation primitives for wheel headings.
//
// Angles are carried as a [Rotation], which always holds radians wrapped
// into (-π, π]. Arithmetic on rotations wraps again, so callers never see
// values outside the half-open range:
//
//	a := geometry.FromDegrees(170)
//	b := a.RotateBy(geometry.Pi)  // -10°
//
// [InputModulus] and [AngleModulus] expose the wrapping for callers that
// work with bare float64 values, such as the continuous-input PID loop.
package geometry
