package swerve_test

import (
	"errors"

	"github.com/san-kum/swervesim/internal/hardware"
)

var errBus = errors.New("bus timeout")

type fakeMotor struct {
	writes []float64
	err    error
	cfg    *hardware.MotorConfig

	rps, rot float64
	readErr  error
}

func (f *fakeMotor) SetVoltage(volts float64) error {
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, volts)
	return nil
}

func (f *fakeMotor) Velocity() (float64, error) { return f.rps, f.readErr }
func (f *fakeMotor) Position() (float64, error) { return f.rot, f.readErr }

func (f *fakeMotor) Configure(cfg hardware.MotorConfig) error {
	f.cfg = &cfg
	return nil
}

func (f *fakeMotor) last() float64 {
	if len(f.writes) == 0 {
		return 0
	}
	return f.writes[len(f.writes)-1]
}

type fakeEncoder struct {
	rot   float64
	err   error
	reads int
}

func (f *fakeEncoder) AbsolutePosition() (float64, error) {
	f.reads++
	return f.rot, f.err
}

type fakeConfigurator struct {
	err     error
	applied []hardware.EncoderConfig
}

func (f *fakeConfigurator) ApplyConfig(enc hardware.AbsoluteEncoder, cfg hardware.EncoderConfig) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, cfg)
	return nil
}
