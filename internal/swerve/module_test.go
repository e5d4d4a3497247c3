package swerve_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/control"
	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/hardware"
	"github.com/san-kum/swervesim/internal/hardware/simhw"
	"github.com/san-kum/swervesim/internal/integrators"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/logging"
	"github.com/san-kum/swervesim/internal/physics"
	"github.com/san-kum/swervesim/internal/swerve"
)

type constLoop float64

func (c constLoop) Calculate(measurement, setpoint float64) float64 { return float64(c) }

var _ = Describe("Module", func() {
	var (
		drive   *fakeMotor
		turn    *fakeMotor
		enc     *fakeEncoder
		conf    *fakeConfigurator
		logs    *bytes.Buffer
		cfg     swerve.Config
		m       *swerve.Module
		buildFn func(opts ...swerve.Option) *swerve.Module
	)

	BeforeEach(func() {
		drive = &fakeMotor{}
		turn = &fakeMotor{}
		enc = &fakeEncoder{}
		conf = &fakeConfigurator{}
		logs = &bytes.Buffer{}

		cfg = swerve.Config{
			DriveMotorChannel:     11,
			TurningMotorChannel:   12,
			TurningEncoderChannel: 13,
			CANBus:                "rio",
			InvertDrive:           true,
			TurningEncoderOffset:  0.125,
			Constants: swerve.Constants{
				WheelRadius:    0.05,
				DriveGearRatio: 6.0,
				DriveKp:        1.0,
				DriveKs:        0.1,
				DriveKv:        2.0,
				TurnKp:         3.0,
				Period:         0.02,
			},
		}

		buildFn = func(opts ...swerve.Option) *swerve.Module {
			logger, err := logging.New(logs, "debug")
			Expect(err).NotTo(HaveOccurred())
			opts = append([]swerve.Option{swerve.WithLogger(logger)}, opts...)
			mod, err := swerve.New(cfg, swerve.Hardware{
				Drive:        drive,
				Turning:      turn,
				Encoder:      enc,
				Configurator: conf,
			}, opts...)
			Expect(err).NotTo(HaveOccurred())
			return mod
		}
	})

	Describe("construction", func() {
		It("applies the magnet offset with an unsigned discontinuity point", func() {
			m = buildFn()
			Expect(conf.applied).To(ConsistOf(hardware.EncoderConfig{MagnetOffset: 0.125, DiscontinuityPoint: 1}))
			Expect(m.ID()).To(Equal(11))
		})

		It("exposes its motor handles and config", func() {
			m = buildFn()
			Expect(m.DriveMotor()).To(BeIdenticalTo(drive))
			Expect(m.TurningMotor()).To(BeIdenticalTo(turn))
			Expect(m.Config().CANBus).To(Equal("rio"))
		})

		It("configures both motors in brake mode with their inversion", func() {
			buildFn()
			Expect(drive.cfg).NotTo(BeNil())
			Expect(drive.cfg.Inverted).To(BeTrue())
			Expect(drive.cfg.IdleMode).To(Equal(hardware.IdleBrake))
			Expect(drive.cfg.CurrentLimit).To(Equal(40.0))
			Expect(turn.cfg.Inverted).To(BeFalse())
		})

		It("logs and continues when the encoder config does not apply", func() {
			conf.err = errBus
			m = buildFn()
			Expect(m).NotTo(BeNil())
			Expect(logs.String()).To(ContainSubstring("could not apply configs to the turning encoder"))
			Expect(logs.String()).To(ContainSubstring("module=11"))
		})

		It("rejects missing hardware", func() {
			_, err := swerve.New(cfg, swerve.Hardware{Drive: drive, Turning: turn, Encoder: enc})
			Expect(err).To(MatchError(swerve.ErrMissingHardware))
		})

		It("rejects non-positive constants", func() {
			cfg.Constants.DriveGearRatio = 0
			_, err := swerve.New(cfg, swerve.Hardware{Drive: drive, Turning: turn, Encoder: enc, Configurator: conf})
			Expect(err).To(MatchError(swerve.ErrInvalidConstants))
		})
	})

	Describe("State and Position", func() {
		BeforeEach(func() {
			m = buildFn()
		})

		It("converts raw encoder velocity through the gear ratio and wheel", func() {
			drive.rps = 12
			enc.rot = 0.25

			s := m.State()
			Expect(s.Speed).To(BeNumerically("~", 0.6283, 1e-4))
			Expect(s.Angle.Radians()).To(BeNumerically("~", math.Pi/2, 1e-12))
		})

		It("wraps the heading into (-π, π]", func() {
			enc.rot = 0.75
			Expect(m.State().Angle.Radians()).To(BeNumerically("~", -math.Pi/2, 1e-12))
		})

		It("converts accumulated rotations to distance", func() {
			drive.rot = 6
			enc.rot = 0.5

			p := m.Position()
			Expect(p.Distance).To(BeNumerically("~", 2*math.Pi*0.05, 1e-12))
			Expect(p.Angle.Radians()).To(BeNumerically("~", math.Pi, 1e-12))
		})

		It("returns equal values on repeated reads", func() {
			drive.rps = 7.5
			enc.rot = 0.1
			a := m.State()
			b := m.State()
			Expect(a.Equal(b, 0)).To(BeTrue())
			Expect(drive.writes).To(BeEmpty())
			Expect(turn.writes).To(BeEmpty())
		})

		It("substitutes the last good reading when a read fails", func() {
			enc.rot = 0.25
			drive.rps = 12
			good := m.State()

			enc.err = errBus
			drive.readErr = errBus
			stale := m.State()
			Expect(stale.Equal(good, 1e-12)).To(BeTrue())
			Expect(logs.String()).To(ContainSubstring("sensor read failed"))
		})

		It("treats non-finite readings as failed", func() {
			enc.rot = 0.25
			m.State()

			enc.rot = math.NaN()
			Expect(m.State().Angle.Radians()).To(BeNumerically("~", math.Pi/2, 1e-12))
		})

		It("reads zero before any good reading", func() {
			enc.err = errBus
			drive.readErr = errBus
			s := m.State()
			Expect(s.Speed).To(BeZero())
			Expect(s.Angle.Radians()).To(BeZero())
		})

		It("keeps ResetEncoders a no-op", func() {
			drive.rot = 3
			before := m.Position()
			m.ResetEncoders()
			Expect(m.Position().Distance).To(Equal(before.Distance))
		})
	})

	Describe("SetDesiredState", func() {
		BeforeEach(func() {
			m = buildFn()
		})

		It("flips a 170° command into -10° at negative speed", func() {
			enc.rot = 0
			m.SetDesiredState(kinematics.NewModuleState(2.0, geometry.FromDegrees(170)))

			cmd := m.LastCommand()
			Expect(cmd.Mode).To(Equal(swerve.ModeTracking))
			Expect(cmd.Optimized.Speed).To(Equal(-2.0))
			Expect(cmd.Optimized.Angle.Degrees()).To(BeNumerically("~", -10, 1e-9))

			// P on speed error plus ks*sign(v) + kv*v at v = -2
			Expect(drive.last()).To(BeNumerically("~", -2.0-0.1-4.0, 1e-9))
			Expect(cmd.DriveFF).To(BeNumerically("~", -4.1, 1e-9))
			Expect(turn.last()).To(BeNumerically("~", 3.0*(-10*math.Pi/180), 1e-9))
		})

		It("closes the drive loop on measured speed", func() {
			enc.rot = 0
			drive.rps = 12 // 0.6283 m/s
			m.SetDesiredState(kinematics.NewModuleState(1.0, geometry.Zero))

			measured := 12 * 2 * math.Pi * 0.05 / 6.0
			Expect(drive.last()).To(BeNumerically("~", (1.0-measured)+0.1+2.0, 1e-9))
			Expect(turn.last()).To(BeNumerically("~", 0, 1e-12))
		})

		It("steers the short way across ±π", func() {
			enc.rot = 3.0 / (2 * math.Pi)
			m.SetDesiredState(kinematics.NewModuleState(0, geometry.FromRadians(-3.0)))

			Expect(math.Abs(turn.last()) / 3.0).To(BeNumerically("<=", 2*math.Pi-6.0+1e-9))
			Expect(turn.last()).To(BeNumerically(">", 0))
		})

		It("writes each motor exactly once per call", func() {
			for i := 0; i < 5; i++ {
				m.SetDesiredState(kinematics.NewModuleState(1, geometry.FromDegrees(30)))
			}
			Expect(drive.writes).To(HaveLen(5))
			Expect(turn.writes).To(HaveLen(5))
			Expect(drive.writes).To(HaveEach(Equal(drive.writes[0])))
		})

		It("commands zero speed for a non-finite request", func() {
			m.SetDesiredState(kinematics.NewModuleState(math.NaN(), geometry.Zero))
			Expect(drive.last()).To(BeZero())
			Expect(logs.String()).To(ContainSubstring("non-finite desired speed"))
		})

		It("logs actuator write failures without panicking", func() {
			drive.err = errBus
			Expect(func() {
				m.SetDesiredState(kinematics.NewModuleState(1, geometry.Zero))
			}).NotTo(Panic())
			Expect(logs.String()).To(ContainSubstring("motor write failed"))
			Expect(turn.writes).To(HaveLen(1))
		})
	})

	Describe("LockTurningAtZero", func() {
		It("steers toward zero without touching the drive motor", func() {
			m = buildFn()
			m.SetDesiredState(kinematics.NewModuleState(1, geometry.FromDegrees(20)))
			driveWrites := len(drive.writes)

			enc.rot = 0.1
			m.LockTurningAtZero()

			Expect(drive.writes).To(HaveLen(driveWrites))
			Expect(turn.last()).To(BeNumerically("~", 3.0*(-0.1*2*math.Pi), 1e-9))
			Expect(m.LastCommand().Mode).To(Equal(swerve.ModeLocked))
		})
	})

	Describe("ForceStop", func() {
		It("commands exactly zero after tracking", func() {
			m = buildFn()
			enc.rot = 0.3
			m.SetDesiredState(kinematics.NewModuleState(3, geometry.FromDegrees(-45)))
			Expect(drive.last()).NotTo(BeZero())

			m.ForceStop()
			Expect(drive.last()).To(Equal(0.0))
			Expect(turn.last()).To(Equal(0.0))
			Expect(m.LastCommand().Mode).To(Equal(swerve.ModeStopped))
		})

		It("is safe before any command and with failing sensors", func() {
			enc.err = errBus
			drive.readErr = errBus
			m = buildFn()
			Expect(m.ForceStop).NotTo(Panic())
			Expect(drive.writes).To(Equal([]float64{0}))
			Expect(turn.writes).To(Equal([]float64{0}))
			Expect(enc.reads).To(BeZero())
		})
	})

	Describe("options", func() {
		It("enables continuous input on a replacement turn loop", func() {
			pid := control.NewPID(1, 0, 0)
			m = buildFn(swerve.WithTurnLoop(pid))
			Expect(pid.IsContinuousInputEnabled()).To(BeTrue())
		})

		It("uses a replacement drive loop and feedforward", func() {
			m = buildFn(
				swerve.WithDriveLoop(constLoop(0.5)),
				swerve.WithFeedforward(control.NewFeedforward(0, 0, 0)),
			)
			m.SetDesiredState(kinematics.NewModuleState(4, geometry.Zero))
			Expect(drive.last()).To(Equal(0.5))
		})
	})

	Describe("closed loop against the simulated plant", func() {
		It("tracks a commanded state", func() {
			sim := simhw.New(physics.DefaultModuleParams(), integrators.NewRK4(), 0.2)
			c := swerve.Config{
				DriveMotorChannel:    1,
				TurningEncoderOffset: 0.2,
				Constants:            swerve.DefaultConstants(),
			}
			mod, err := swerve.New(c, swerve.Hardware{
				Drive:        sim.Drive,
				Turning:      sim.Turn,
				Encoder:      sim.Encoder,
				Configurator: simhw.NewConfigurator(),
			})
			Expect(err).NotTo(HaveOccurred())

			target := kinematics.NewModuleState(1.5, geometry.FromDegrees(60))
			for i := 0; i < 150; i++ {
				mod.SetDesiredState(target)
				Expect(sim.Step(0.02)).To(Succeed())
			}

			s := mod.State()
			Expect(s.Speed).To(BeNumerically("~", 1.5, 0.05))
			Expect(s.Angle.Degrees()).To(BeNumerically("~", 60, 1))
		})
	})
})
