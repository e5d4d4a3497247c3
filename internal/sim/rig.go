package sim

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/hardware/simhw"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/swerve"
)

// Rig is a module controller wired to simulated hardware.
type Rig struct {
	Module       *swerve.Module
	Hardware     *simhw.Module
	Configurator *simhw.Configurator
	Period       float64
}

type RigOptions struct {
	// Module selects a module by name; empty means the first one.
	Module string
	// FailConfig makes every encoder config attempt time out, leaving the
	// steering reference unzeroed.
	FailConfig bool
	// InitialAngle is the steering angle, in radians, at power-on.
	InitialAngle float64
	Logger       *log.Logger
}

func NewRig(cfg *config.Config, opts RigOptions) (*Rig, error) {
	mc, err := cfg.Module(opts.Module, 0)
	if err != nil {
		return nil, err
	}
	integ, ok := integrators.New(cfg.Sim.Integrator)
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", cfg.Sim.Integrator)
	}

	hw := simhw.New(cfg.PlantParams(), integ, mc.TurningEncoderOffset)
	hw.SetSteerAngle(opts.InitialAngle)
	hw.Drive.SetReversed(mc.InvertDrive)
	hw.Turn.SetReversed(mc.InvertTurning)

	conf := simhw.NewConfigurator()
	if opts.FailConfig {
		conf.FailNext(conf.Attempts)
	}

	swerveOpts := []swerve.Option{}
	if opts.Logger != nil {
		swerveOpts = append(swerveOpts, swerve.WithLogger(opts.Logger))
	}
	m, err := swerve.New(mc, swerve.Hardware{
		Drive:        hw.Drive,
		Turning:      hw.Turn,
		Encoder:      hw.Encoder,
		Configurator: conf,
	}, swerveOpts...)
	if err != nil {
		return nil, err
	}

	return &Rig{Module: m, Hardware: hw, Configurator: conf, Period: cfg.Consts.Period}, nil
}

// Simulator returns a simulator driving the rig's module and plant.
func (r *Rig) Simulator() *Simulator {
	return New(r.Module, r.Hardware)
}
