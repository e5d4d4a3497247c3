package kinematics

import (
	"fmt"

	"github.com/san-kum/swervesim/internal/geometry"
)

// ModulePosition is the distance a wheel has rolled and its heading.
// Distance accumulates and is never wrapped.
type ModulePosition struct {
	Distance float64 // m
	Angle    geometry.Rotation
}

func NewModulePosition(distance float64, angle geometry.Rotation) ModulePosition {
	return ModulePosition{Distance: distance, Angle: angle}
}

// Delta is the distance rolled since prev, with the current heading.
func (p ModulePosition) Delta(prev ModulePosition) ModulePosition {
	return ModulePosition{Distance: p.Distance - prev.Distance, Angle: p.Angle}
}

func (p ModulePosition) String() string {
	return fmt.Sprintf("ModulePosition(distance: %.3f m, angle: %.2f°)", p.Distance, p.Angle.Degrees())
}
