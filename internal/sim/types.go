package sim

import (
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/swerve"
)

// Controller is the module-side surface the simulator drives.
type Controller interface {
	SetDesiredState(desired kinematics.ModuleState)
	LockTurningAtZero()
	ForceStop()
	State() kinematics.ModuleState
	Position() kinematics.ModulePosition
	LastCommand() swerve.Command
}

// Plant advances simulated mechanics by one period.
type Plant interface {
	Step(dt float64) error
}

// Frame is one control tick as seen from outside the module.
type Frame struct {
	Time       float64
	Mode       swerve.Mode
	Desired    kinematics.ModuleState
	Optimized  kinematics.ModuleState
	Measured   kinematics.ModuleState
	Position   kinematics.ModulePosition
	DriveVolts float64
	TurnVolts  float64
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	Period   float64
	Duration float64
	// Realtime paces ticks against the wall clock.
	Realtime bool
}

func DefaultConfig() Config {
	return Config{
		Period:   0.02,
		Duration: 5.0,
	}
}

type Result struct {
	Scenario   string
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}
