package swerve

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/hardware"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/logging"
	"github.com/san-kum/swervesim/internal/units"
)

// Mode records which entry point produced the last actuator command.
type Mode int

const (
	ModeIdle Mode = iota
	ModeTracking
	ModeLocked
	ModeStopped
)

func (m Mode) String() string {
	switch m {
	case ModeTracking:
		return "tracking"
	case ModeLocked:
		return "locked"
	case ModeStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// ParseMode is the inverse of Mode.String. Unknown names map to ModeIdle.
func ParseMode(s string) Mode {
	switch s {
	case "tracking":
		return ModeTracking
	case "locked":
		return ModeLocked
	case "stopped":
		return ModeStopped
	default:
		return ModeIdle
	}
}

// Command is the last setpoint and the voltages it produced.
type Command struct {
	Mode       Mode
	Desired    kinematics.ModuleState
	Optimized  kinematics.ModuleState
	DriveVolts float64
	DriveFF    float64
	TurnVolts  float64
}

type continuousLoop interface {
	EnableContinuousInput(min, max float64)
}

type Module struct {
	id     int
	cfg    Config
	wheel  units.Wheel
	logger *log.Logger

	drive   hardware.DriveMotor
	turning hardware.TurningMotor
	encoder hardware.AbsoluteEncoder

	drivePID control.Loop
	turnPID  control.Loop
	ff       control.FeedforwardModel

	// last good raw readings, substituted when a read fails
	lastTurnRot  float64
	lastDriveRPS float64
	lastDriveRot float64

	last Command
}

// New builds a module controller. A failure to configure the turning
// encoder is logged and the module is still returned.
func New(cfg Config, hw Hardware, opts ...Option) (*Module, error) {
	if err := hw.validate(); err != nil {
		return nil, err
	}
	k := cfg.Constants
	if err := k.Validate(); err != nil {
		return nil, err
	}

	period := k.Period
	if period == 0 {
		period = control.DefaultPeriod
	}
	drivePID := control.NewPID(k.DriveKp, 0, 0)
	drivePID.Period = period
	turnPID := control.NewPID(k.TurnKp, 0, 0)
	turnPID.Period = period

	m := &Module{
		id:       cfg.DriveMotorChannel,
		cfg:      cfg,
		wheel:    units.Wheel{Radius: k.WheelRadius, GearRatio: k.DriveGearRatio},
		logger:   logging.Discard(),
		drive:    hw.Drive,
		turning:  hw.Turning,
		encoder:  hw.Encoder,
		drivePID: drivePID,
		turnPID:  turnPID,
		ff:       control.NewFeedforward(k.DriveKs, k.DriveKv, k.DriveKa),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("module", m.id)

	m.configureMotor(hw.Drive, "drive", cfg.InvertDrive)
	m.configureMotor(hw.Turning, "turning", cfg.InvertTurning)

	encCfg := hardware.EncoderConfig{
		MagnetOffset:       cfg.TurningEncoderOffset,
		DiscontinuityPoint: 1,
	}
	if err := hw.Configurator.ApplyConfig(hw.Encoder, encCfg); err != nil {
		m.logger.Warn("could not apply configs to the turning encoder", "err", err)
	}

	if c, ok := m.turnPID.(continuousLoop); ok {
		c.EnableContinuousInput(-math.Pi, math.Pi)
	}

	return m, nil
}

func (m *Module) configureMotor(dev any, name string, inverted bool) {
	c, ok := dev.(motorConfigurer)
	if !ok {
		return
	}
	mc := hardware.DefaultMotorConfig()
	mc.Inverted = inverted
	if err := c.Configure(mc); err != nil {
		m.logger.Warn("could not configure motor", "motor", name, "err", err)
	}
}

func (m *Module) ID() int { return m.id }

func (m *Module) Config() Config { return m.cfg }

func (m *Module) DriveMotor() hardware.DriveMotor { return m.drive }

func (m *Module) TurningMotor() hardware.TurningMotor { return m.turning }

// LastCommand returns the most recent setpoint and voltages.
func (m *Module) LastCommand() Command { return m.last }

// State returns the measured wheel speed and heading.
func (m *Module) State() kinematics.ModuleState {
	return kinematics.NewModuleState(m.driveVelocity(), m.turnAngle())
}

// Position returns the distance rolled and the heading.
func (m *Module) Position() kinematics.ModulePosition {
	return kinematics.NewModulePosition(m.drivePosition(), m.turnAngle())
}

// SetDesiredState optimizes desired against the measured heading and
// commands both motors.
func (m *Module) SetDesiredState(desired kinematics.ModuleState) {
	current := m.turnAngle()

	if !finite(desired.Speed) {
		m.logger.Warn("non-finite desired speed, commanding zero", "speed", desired.Speed)
		desired.Speed = 0
	}
	if !finite(desired.Angle.Radians()) {
		m.logger.Warn("non-finite desired angle, holding heading")
		desired.Angle = current
	}

	opt := kinematics.Optimize(desired, current)

	ff := m.ff.Calculate(opt.Speed)
	driveOut := m.drivePID.Calculate(m.driveVelocity(), opt.Speed) + ff
	turnOut := m.turnPID.Calculate(current.Radians(), opt.Angle.Radians())

	m.setVoltage(m.drive, "drive", driveOut)
	m.setVoltage(m.turning, "turning", turnOut)

	m.last = Command{
		Mode:       ModeTracking,
		Desired:    desired,
		Optimized:  opt,
		DriveVolts: driveOut,
		DriveFF:    ff,
		TurnVolts:  turnOut,
	}
}

// LockTurningAtZero steers toward 0 rad without touching the drive motor.
func (m *Module) LockTurningAtZero() {
	turnOut := m.turnPID.Calculate(m.turnAngle().Radians(), 0)
	m.setVoltage(m.turning, "turning", turnOut)

	m.last = Command{
		Mode:       ModeLocked,
		Optimized:  kinematics.NewModuleState(0, geometry.Zero),
		DriveVolts: m.last.DriveVolts,
		DriveFF:    m.last.DriveFF,
		TurnVolts:  turnOut,
	}
}

// ForceStop commands zero volts to both motors, bypassing the loops.
func (m *Module) ForceStop() {
	m.setVoltage(m.drive, "drive", 0)
	m.setVoltage(m.turning, "turning", 0)
	m.last = Command{Mode: ModeStopped}
}

// ResetEncoders does nothing. The steering encoder is absolute and the
// drive position is never zeroed.
func (m *Module) ResetEncoders() {}

type voltageSetter interface {
	SetVoltage(volts float64) error
}

func (m *Module) setVoltage(dev voltageSetter, name string, volts float64) {
	if err := dev.SetVoltage(volts); err != nil {
		m.logger.Warn("motor write failed", "motor", name, "volts", volts, "err", err)
	}
}

func (m *Module) turnAngle() geometry.Rotation {
	m.lastTurnRot = m.read(m.encoder.AbsolutePosition, m.lastTurnRot, "turning encoder")
	return geometry.FromRotations(m.lastTurnRot)
}

func (m *Module) driveVelocity() float64 {
	m.lastDriveRPS = m.read(m.drive.Velocity, m.lastDriveRPS, "drive velocity")
	return m.wheel.MetersPerSecond(m.lastDriveRPS)
}

func (m *Module) drivePosition() float64 {
	m.lastDriveRot = m.read(m.drive.Position, m.lastDriveRot, "drive position")
	return m.wheel.Meters(m.lastDriveRot)
}

// read returns a fresh reading, or prev when the read fails.
func (m *Module) read(fn func() (float64, error), prev float64, what string) float64 {
	v, err := fn()
	if err == nil && !finite(v) {
		err = errBadReading
	}
	if err != nil {
		m.logger.Debug("sensor read failed, using last value", "sensor", what, "err", err)
		return prev
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
