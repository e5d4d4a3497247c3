package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

// Settled is the fraction of tracking ticks where heading and speed are
// both within tolerance of the optimized setpoint.
type Settled struct {
	name       string
	angleTol   float64
	speedTol   float64
	violations int
	samples    int
}

func NewSettled(angleTol, speedTol float64) *Settled {
	return &Settled{
		name:     "settled",
		angleTol: angleTol,
		speedTol: speedTol,
	}
}

func (s *Settled) Name() string {
	return s.name
}

func (s *Settled) Observe(f sim.Frame) {
	if f.Mode != swerve.ModeTracking {
		return
	}
	s.samples++
	if !f.Optimized.Angle.Equal(f.Measured.Angle, s.angleTol) ||
		math.Abs(f.Optimized.Speed-f.Measured.Speed) > s.speedTol {
		s.violations++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

// HigherIsBetter reports that a larger settled fraction is better.
func (s *Settled) HigherIsBetter() bool { return true }

func (s *Settled) Reset() {
	s.violations = 0
	s.samples = 0
}

// Default returns the metrics recorded for every run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewHeadingError(),
		NewSpeedError(),
		NewSteerTravel(),
		NewControlEffort(),
		NewSettled(2*math.Pi/180, 0.05),
	}
}

// HigherIsBetter reports whether the named default metric improves as it
// grows. Unknown names and error-style metrics report false.
func HigherIsBetter(name string) bool {
	for _, m := range Default() {
		if m.Name() != name {
			continue
		}
		d, ok := m.(interface{ HigherIsBetter() bool })
		return ok && d.HigherIsBetter()
	}
	return false
}
