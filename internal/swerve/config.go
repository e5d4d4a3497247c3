package swerve

import (
	"fmt"

	"github.com/san-kum/swervesim/internal/hardware"
)

// Constants are the mechanical properties and gains shared by every module
// on a robot.
type Constants struct {
	WheelRadius    float64 // m
	DriveGearRatio float64 // motor rotations per wheel rotation

	DriveKp float64 // volts per (m/s) of speed error
	DriveKs float64 // volts
	DriveKv float64 // volts per (m/s)
	DriveKa float64 // volts per (m/s²)

	TurnKp float64 // volts per radian of heading error

	// Period is the control loop period in seconds.
	Period float64
}

func DefaultConstants() Constants {
	return Constants{
		WheelRadius:    0.0508,
		DriveGearRatio: 6.75,
		DriveKp:        0.5,
		DriveKs:        0.12,
		DriveKv:        2.25,
		DriveKa:        0.0,
		TurnKp:         4.0,
		Period:         0.02,
	}
}

func (c Constants) Validate() error {
	if c.WheelRadius <= 0 {
		return fmt.Errorf("%w: wheel radius %v", ErrInvalidConstants, c.WheelRadius)
	}
	if c.DriveGearRatio <= 0 {
		return fmt.Errorf("%w: gear ratio %v", ErrInvalidConstants, c.DriveGearRatio)
	}
	if c.Period < 0 {
		return fmt.Errorf("%w: period %v", ErrInvalidConstants, c.Period)
	}
	return nil
}

// Config identifies one physical module and how its sensor is zeroed.
type Config struct {
	DriveMotorChannel     int
	TurningMotorChannel   int
	TurningEncoderChannel int
	CANBus                string

	InvertDrive   bool
	InvertTurning bool

	// TurningEncoderOffset is the magnet offset, in rotations, that makes
	// the encoder read zero with the wheel pointed forward.
	TurningEncoderOffset float64

	Constants Constants
}

// Hardware bundles the handles a Module drives.
type Hardware struct {
	Drive        hardware.DriveMotor
	Turning      hardware.TurningMotor
	Encoder      hardware.AbsoluteEncoder
	Configurator hardware.Configurator
}

func (h Hardware) validate() error {
	switch {
	case h.Drive == nil:
		return fmt.Errorf("%w: drive motor", ErrMissingHardware)
	case h.Turning == nil:
		return fmt.Errorf("%w: turning motor", ErrMissingHardware)
	case h.Encoder == nil:
		return fmt.Errorf("%w: turning encoder", ErrMissingHardware)
	case h.Configurator == nil:
		return fmt.Errorf("%w: configurator", ErrMissingHardware)
	}
	return nil
}

// motorConfigurer is implemented by motors that accept controller settings.
type motorConfigurer interface {
	Configure(cfg hardware.MotorConfig) error
}
