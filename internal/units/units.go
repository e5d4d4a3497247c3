// Package units converts raw encoder readings into SI quantities.
package units

import "math"

func RotationsToRadians(rot float64) float64 { return rot * 2 * math.Pi }

func RadiansToRotations(rad float64) float64 { return rad / (2 * math.Pi) }

func DegreesToRadians(deg float64) float64 { return deg * math.Pi / 180 }

func RadiansToDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// Wheel describes a driven wheel behind a reduction. Raw encoder values are
// motor-side rotations, so they are divided by GearRatio before being
// scaled by the wheel circumference.
type Wheel struct {
	Radius    float64 // meters
	GearRatio float64 // motor rotations per wheel rotation
}

func (w Wheel) Circumference() float64 { return 2 * math.Pi * w.Radius }

// MetersPerSecond converts motor rotations per second to wheel surface speed.
func (w Wheel) MetersPerSecond(rps float64) float64 {
	return rps * w.Circumference() / w.GearRatio
}

// Meters converts accumulated motor rotations to distance travelled.
func (w Wheel) Meters(rot float64) float64 {
	return rot * w.Circumference() / w.GearRatio
}

// MotorRotations is the inverse of Meters.
func (w Wheel) MotorRotations(meters float64) float64 {
	return meters * w.GearRatio / w.Circumference()
}
