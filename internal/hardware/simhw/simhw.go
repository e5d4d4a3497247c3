// Package simhw implements the hardware contracts over a simulated
// [physics.ModulePlant]. A [Module] owns the plant state; its motors and
// encoder are views onto that state. Call [Module.Step] once per control
// period to advance the mechanics under the last commanded voltages.
//
// Read and configuration faults can be injected to exercise the
// controller's degraded paths.
package simhw

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/swervesim/internal/dynamo"
	"github.com/san-kum/swervesim/internal/hardware"
	"github.com/san-kum/swervesim/internal/physics"
)

var (
	ErrReadTimeout   = errors.New("simhw: status signal read timed out")
	ErrConfigTimeout = errors.New("simhw: config apply timed out")
	ErrForeignDevice = errors.New("simhw: device does not belong to the simulation")
)

type Module struct {
	plant *physics.ModulePlant
	integ dynamo.Integrator
	x     dynamo.State
	u     dynamo.Control
	t     float64

	Drive   *DriveMotor
	Turn    *TurningMotor
	Encoder *Encoder
}

// New builds a simulated module. zeroOffset is the raw encoder reading, in
// rotations, when the wheel points straight ahead.
func New(p physics.ModuleParams, integ dynamo.Integrator, zeroOffset float64) *Module {
	m := &Module{
		plant: physics.NewModulePlant(p),
		integ: integ,
	}
	m.x = make(dynamo.State, m.plant.StateDim())
	m.u = make(dynamo.Control, m.plant.ControlDim())
	m.Drive = &DriveMotor{motor: motor{m: m, idx: 0, cfg: hardware.DefaultMotorConfig()}}
	m.Turn = &TurningMotor{motor: motor{m: m, idx: 1, cfg: hardware.DefaultMotorConfig()}}
	m.Encoder = &Encoder{m: m, zeroOffset: zeroOffset, cfg: hardware.EncoderConfig{DiscontinuityPoint: 0.5}}
	return m
}

// Step advances the plant by dt under the held voltages.
func (m *Module) Step(dt float64) error {
	next := m.integ.Step(m.plant, m.x, m.u, m.t, dt)
	if !next.IsValid() {
		return &dynamo.SimulationError{Time: m.t, State: m.x.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	m.x = next
	m.t += dt
	return nil
}

func (m *Module) Time() float64 { return m.t }

// State returns a copy of the plant state vector.
func (m *Module) State() dynamo.State { return m.x.Clone() }

// Voltages returns the voltages currently applied to the plant.
func (m *Module) Voltages() dynamo.Control {
	c := make(dynamo.Control, len(m.u))
	copy(c, m.u)
	return c
}

// SetSteerAngle places the wheel at rad, as if turned by hand.
func (m *Module) SetSteerAngle(rad float64) {
	m.x[physics.SteerAngle] = rad
	m.x[physics.SteerRate] = 0
}

// SetDriveVelocity sets the drive motor speed in rotations/s.
func (m *Module) SetDriveVelocity(rps float64) {
	m.x[physics.DriveVel] = rps
}

type motor struct {
	m        *Module
	idx      int
	cfg      hardware.MotorConfig
	reversed bool
	writes   int
	last     float64
}

// SetReversed mounts the motor so positive rotor motion moves the
// mechanism backwards. A motor configured Inverted undoes it.
func (mo *motor) SetReversed(reversed bool) { mo.reversed = reversed }

func (mo *motor) SetVoltage(volts float64) error {
	if math.IsNaN(volts) {
		return fmt.Errorf("simhw: refusing NaN voltage")
	}
	mo.writes++
	mo.last = volts
	mo.m.u[mo.idx] = mo.sign() * volts
	return nil
}

// Configure applies controller settings, mirroring a vendor configure call.
func (mo *motor) Configure(cfg hardware.MotorConfig) error {
	if cfg.CurrentLimit <= 0 {
		return fmt.Errorf("simhw: current limit must be positive, got %v", cfg.CurrentLimit)
	}
	mo.cfg = cfg
	return nil
}

func (mo *motor) Config() hardware.MotorConfig { return mo.cfg }

// Writes is the number of SetVoltage calls accepted.
func (mo *motor) Writes() int { return mo.writes }

// LastVoltage is the most recent commanded voltage, before inversion.
func (mo *motor) LastVoltage() float64 { return mo.last }

// sign maps commanded direction onto mechanism direction.
func (mo *motor) sign() float64 {
	if mo.cfg.Inverted != mo.reversed {
		return -1
	}
	return 1
}

type TurningMotor struct {
	motor
}

type DriveMotor struct {
	motor
	failReads int
}

// FailReads makes the next n encoder reads return an error.
func (d *DriveMotor) FailReads(n int) { d.failReads = n }

func (d *DriveMotor) Velocity() (float64, error) {
	if d.failReads > 0 {
		d.failReads--
		return 0, ErrReadTimeout
	}
	return d.sign() * d.m.x[physics.DriveVel], nil
}

func (d *DriveMotor) Position() (float64, error) {
	if d.failReads > 0 {
		d.failReads--
		return 0, ErrReadTimeout
	}
	return d.sign() * d.m.x[physics.DrivePos], nil
}

type Encoder struct {
	m          *Module
	zeroOffset float64
	cfg        hardware.EncoderConfig
	failReads  int
}

// FailReads makes the next n reads return an error.
func (e *Encoder) FailReads(n int) { e.failReads = n }

func (e *Encoder) Config() hardware.EncoderConfig { return e.cfg }

func (e *Encoder) AbsolutePosition() (float64, error) {
	if e.failReads > 0 {
		e.failReads--
		return 0, ErrReadTimeout
	}
	raw := e.m.x[physics.SteerAngle]/(2*math.Pi) - e.zeroOffset
	return hardware.WrapAbsolute(raw, e.cfg), nil
}

// Configurator applies encoder configs to simulated encoders, retrying on
// timeout up to Attempts times.
type Configurator struct {
	Attempts int
	failures int
	applied  int
}

func NewConfigurator() *Configurator {
	return &Configurator{Attempts: 5}
}

// FailNext makes the next n apply attempts time out.
func (c *Configurator) FailNext(n int) { c.failures = n }

// Applied counts successful applications.
func (c *Configurator) Applied() int { return c.applied }

func (c *Configurator) ApplyConfig(enc hardware.AbsoluteEncoder, cfg hardware.EncoderConfig) error {
	e, ok := enc.(*Encoder)
	if !ok {
		return ErrForeignDevice
	}
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if c.failures > 0 {
			c.failures--
			continue
		}
		e.cfg = cfg
		c.applied++
		return nil
	}
	return fmt.Errorf("apply encoder config after %d attempts: %w", attempts, ErrConfigTimeout)
}

var (
	_ hardware.DriveMotor      = (*DriveMotor)(nil)
	_ hardware.TurningMotor    = (*TurningMotor)(nil)
	_ hardware.AbsoluteEncoder = (*Encoder)(nil)
	_ hardware.Configurator    = (*Configurator)(nil)
)
