package metrics

import (
	"math"

	"github.com/san-kum/swervesim/internal/sim"
)

// ControlEffort is the mean of |drive volts| + |turn volts| per tick.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(f sim.Frame) {
	c.sum += math.Abs(f.DriveVolts) + math.Abs(f.TurnVolts)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
