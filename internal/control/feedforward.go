package control

import (
	"fmt"
	"math"
)

// FeedforwardModel predicts the effort needed to hold a velocity.
type FeedforwardModel interface {
	Calculate(velocity float64) float64
}

// Feedforward is a permanent-magnet DC motor model:
// V = Ks*sign(v) + Kv*v + Ka*a.
type Feedforward struct {
	Ks float64 // volts
	Kv float64 // volts per (m/s)
	Ka float64 // volts per (m/s²)
}

func NewFeedforward(ks, kv, ka float64) Feedforward {
	return Feedforward{Ks: ks, Kv: kv, Ka: ka}
}

func (f Feedforward) Calculate(velocity float64) float64 {
	return f.CalculateAccel(velocity, 0)
}

func (f Feedforward) CalculateAccel(velocity, accel float64) float64 {
	return f.Ks*sign(velocity) + f.Kv*velocity + f.Ka*accel
}

// MaxVelocity is the steady-state speed reachable at maxVoltage while
// accelerating at accel.
func (f Feedforward) MaxVelocity(maxVoltage, accel float64) float64 {
	if f.Kv == 0 {
		return math.Inf(1)
	}
	return (maxVoltage - f.Ks - f.Ka*accel) / f.Kv
}

func (f Feedforward) GetParams() map[string]float64 {
	return map[string]float64{"Ks": f.Ks, "Kv": f.Kv, "Ka": f.Ka}
}

func (f *Feedforward) SetParam(name string, value float64) error {
	switch name {
	case "Ks":
		f.Ks = value
	case "Kv":
		f.Kv = value
	case "Ka":
		f.Ka = value
	default:
		return fmt.Errorf("unknown feedforward param: %s", name)
	}
	return nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
