package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/dynamo"
)

const (
	DrivePos = iota
	DriveVel
	SteerAngle
	SteerRate
)

type ModuleParams struct {
	NominalVoltage float64 // volts at which free speeds are quoted
	DriveFreeSpeed float64 // drive motor rotations/s at NominalVoltage
	DriveTau       float64 // drive speed time constant, s
	DriveFriction  float64 // volts lost to static friction
	SteerFreeRate  float64 // steering rad/s at NominalVoltage
	SteerTau       float64 // steering rate time constant, s
}

func DefaultModuleParams() ModuleParams {
	return ModuleParams{
		NominalVoltage: 12.0,
		DriveFreeSpeed: 113.0,
		DriveTau:       0.08,
		DriveFriction:  0.12,
		SteerFreeRate:  33.0,
		SteerTau:       0.03,
	}
}

type ModulePlant struct {
	ModuleParams
}

func NewModulePlant(p ModuleParams) *ModulePlant {
	return &ModulePlant{ModuleParams: p}
}

func (m *ModulePlant) StateDim() int   { return 4 }
func (m *ModulePlant) ControlDim() int { return 2 }

func (m *ModulePlant) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	driveV, steerV := 0.0, 0.0
	if len(u) > 1 {
		driveV, steerV = u[0], u[1]
	}

	driveV = m.clamp(driveV)
	steerV = m.clamp(steerV)

	effective := 0.0
	if math.Abs(driveV) > m.DriveFriction {
		effective = driveV - math.Copysign(m.DriveFriction, driveV)
	}
	targetVel := effective / m.NominalVoltage * m.DriveFreeSpeed
	targetRate := steerV / m.NominalVoltage * m.SteerFreeRate

	return dynamo.State{
		x[DriveVel],
		(targetVel - x[DriveVel]) / m.DriveTau,
		x[SteerRate],
		(targetRate - x[SteerRate]) / m.SteerTau,
	}
}

func (m *ModulePlant) clamp(v float64) float64 {
	return math.Max(-m.NominalVoltage, math.Min(m.NominalVoltage, v))
}

func (m *ModulePlant) GetParams() map[string]float64 {
	return map[string]float64{
		"nominal_voltage":  m.NominalVoltage,
		"drive_free_speed": m.DriveFreeSpeed,
		"drive_tau":        m.DriveTau,
		"drive_friction":   m.DriveFriction,
		"steer_free_rate":  m.SteerFreeRate,
		"steer_tau":        m.SteerTau,
	}
}

func (m *ModulePlant) SetParam(name string, value float64) error {
	if value < 0 || (value == 0 && name != "drive_friction") {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "nominal_voltage":
		m.NominalVoltage = value
	case "drive_free_speed":
		m.DriveFreeSpeed = value
	case "drive_tau":
		m.DriveTau = value
	case "drive_friction":
		m.DriveFriction = value
	case "steer_free_rate":
		m.SteerFreeRate = value
	case "steer_tau":
		m.SteerTau = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
