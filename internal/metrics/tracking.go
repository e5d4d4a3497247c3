package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

// HeadingError is the mean absolute wrapped difference between the
// optimized setpoint heading and the measured heading, in radians, over
// tracking ticks.
type HeadingError struct {
	name    string
	sum     float64
	samples int
}

func NewHeadingError() *HeadingError {
	return &HeadingError{name: "heading_error"}
}

func (h *HeadingError) Name() string { return h.name }

func (h *HeadingError) Observe(f sim.Frame) {
	if f.Mode != swerve.ModeTracking {
		return
	}
	h.sum += math.Abs(f.Optimized.Angle.Minus(f.Measured.Angle).Radians())
	h.samples++
}

func (h *HeadingError) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return h.sum / float64(h.samples)
}

func (h *HeadingError) Reset() {
	h.sum = 0
	h.samples = 0
}

// SpeedError is the mean absolute difference between optimized and measured
// wheel speed, in m/s, over tracking ticks.
type SpeedError struct {
	name    string
	sum     float64
	samples int
}

func NewSpeedError() *SpeedError {
	return &SpeedError{name: "speed_error"}
}

func (s *SpeedError) Name() string { return s.name }

func (s *SpeedError) Observe(f sim.Frame) {
	if f.Mode != swerve.ModeTracking {
		return
	}
	s.sum += math.Abs(f.Optimized.Speed - f.Measured.Speed)
	s.samples++
}

func (s *SpeedError) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SpeedError) Reset() {
	s.sum = 0
	s.samples = 0
}

// SteerTravel totals the heading change between consecutive ticks, in
// radians, taking the short way around.
type SteerTravel struct {
	name  string
	total float64
	prev  float64
	seen  bool
}

func NewSteerTravel() *SteerTravel {
	return &SteerTravel{name: "steer_travel"}
}

func (s *SteerTravel) Name() string { return s.name }

func (s *SteerTravel) Observe(f sim.Frame) {
	a := f.Measured.Angle.Radians()
	if s.seen {
		d := math.Abs(math.Remainder(a-s.prev, 2*math.Pi))
		s.total += d
	}
	s.prev = a
	s.seen = true
}

func (s *SteerTravel) Value() float64 { return s.total }

func (s *SteerTravel) Reset() {
	s.total = 0
	s.prev = 0
	s.seen = false
}
