// Package kinematics holds per-module swerve state types.
package kinematics

import (
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/geometry"
)

// maxSteer is the largest heading change Optimize will leave in place.
const maxSteer = math.Pi / 2

// ModuleState is a wheel speed and heading, measured or desired.
type ModuleState struct {
	Speed float64 // m/s
	Angle geometry.Rotation
}

func NewModuleState(speed float64, angle geometry.Rotation) ModuleState {
	return ModuleState{Speed: speed, Angle: angle}
}

// Optimize returns the equivalent state that needs at most a quarter turn
// of steering from current. When the desired heading is more than 90°
// away, the heading is flipped by π and the speed negated.
func Optimize(desired ModuleState, current geometry.Rotation) ModuleState {
	delta := desired.Angle.Minus(current)
	if math.Abs(delta.Radians()) > maxSteer {
		return ModuleState{
			Speed: -desired.Speed,
			Angle: desired.Angle.RotateBy(geometry.Pi),
		}
	}
	return desired
}

// Equal compares speed and heading as a unit.
func (s ModuleState) Equal(other ModuleState, tol float64) bool {
	return math.Abs(s.Speed-other.Speed) <= tol && s.Angle.Equal(other.Angle, tol)
}

func (s ModuleState) String() string {
	return fmt.Sprintf("ModuleState(speed: %.3f m/s, angle: %.2f°)", s.Speed, s.Angle.Degrees())
}
