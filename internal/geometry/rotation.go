package geometry

import (
	"fmt"
	"math"
)

// Rotation is a heading in the plane, stored as radians in (-π, π].
type Rotation struct {
	rad float64
}

var (
	Zero = Rotation{}
	Pi   = Rotation{rad: math.Pi}
)

func FromRadians(rad float64) Rotation {
	return Rotation{rad: AngleModulus(rad)}
}

func FromDegrees(deg float64) Rotation {
	return FromRadians(deg * math.Pi / 180)
}

// FromRotations converts a fraction of a full turn, as reported by an
// absolute encoder, into a Rotation.
func FromRotations(rot float64) Rotation {
	return FromRadians(rot * 2 * math.Pi)
}

func (r Rotation) Radians() float64 { return r.rad }

func (r Rotation) Degrees() float64 { return r.rad * 180 / math.Pi }

func (r Rotation) Cos() float64 { return math.Cos(r.rad) }

func (r Rotation) Sin() float64 { return math.Sin(r.rad) }

func (r Rotation) Plus(other Rotation) Rotation {
	return FromRadians(r.rad + other.rad)
}

// Minus returns the shortest signed rotation from other to r.
func (r Rotation) Minus(other Rotation) Rotation {
	return FromRadians(r.rad - other.rad)
}

func (r Rotation) RotateBy(other Rotation) Rotation {
	return r.Plus(other)
}

func (r Rotation) Neg() Rotation {
	return FromRadians(-r.rad)
}

// Equal reports whether r and other name the same heading within tol
// radians, measured around the wrap point.
func (r Rotation) Equal(other Rotation, tol float64) bool {
	return math.Abs(r.Minus(other).rad) <= tol
}

func (r Rotation) String() string {
	return fmt.Sprintf("Rotation(%.2f°)", r.Degrees())
}
