package control

import (
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/geometry"
)

// DefaultPeriod matches a 50 Hz control loop.
const DefaultPeriod = 0.02

// Loop computes an actuator effort from a measurement and a setpoint.
type Loop interface {
	Calculate(measurement, setpoint float64) float64
}

// Configurable exposes tunable parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Period float64

	continuous         bool
	minInput, maxInput float64

	minIntegral, maxIntegral float64

	integral float64
	prevErr  float64
	err      float64
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp:          kp,
		Ki:          ki,
		Kd:          kd,
		Period:      DefaultPeriod,
		minIntegral: -1,
		maxIntegral: 1,
		first:       true,
	}
}

// EnableContinuousInput treats [min, max] as a ring: the error is wrapped
// to the shortest signed distance before gains are applied.
func (p *PID) EnableContinuousInput(min, max float64) {
	p.continuous = true
	p.minInput = min
	p.maxInput = max
}

func (p *PID) DisableContinuousInput() { p.continuous = false }

func (p *PID) IsContinuousInputEnabled() bool { return p.continuous }

// SetIntegratorRange bounds the integral contribution (Ki * integral).
func (p *PID) SetIntegratorRange(min, max float64) {
	p.minIntegral = min
	p.maxIntegral = max
}

// Calculate returns the effort for one period.
func (p *PID) Calculate(measurement, setpoint float64) float64 {
	err := p.wrapError(setpoint - measurement)
	p.err = err

	if p.first {
		p.prevErr = err
		p.first = false
	}

	u := p.Kp * err

	if p.Ki != 0 && p.Period > 0 {
		p.integral += err * p.Period
		lo, hi := p.minIntegral/p.Ki, p.maxIntegral/p.Ki
		if lo > hi {
			lo, hi = hi, lo
		}
		p.integral = math.Max(lo, math.Min(hi, p.integral))
		u += p.Ki * p.integral
	}

	if p.Kd != 0 && p.Period > 0 {
		u += p.Kd * (err - p.prevErr) / p.Period
	}

	p.prevErr = err
	return u
}

// Error is the wrapped error from the last Calculate.
func (p *PID) Error() float64 { return p.err }

func (p *PID) wrapError(err float64) float64 {
	if !p.continuous {
		return err
	}
	bound := (p.maxInput - p.minInput) / 2
	return geometry.InputModulus(err, -bound, bound)
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.err = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
		p.integral = 0
	case "Kd":
		p.Kd = value
	default:
		return fmt.Errorf("unknown pid param: %s", name)
	}
	return nil
}
