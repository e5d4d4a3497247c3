// Package hardware defines the narrow contracts a swerve module needs from
// its motors and sensors. Vendor drivers implement these; [simhw] provides
// a simulated set for tests and offline runs.
//
// [simhw]: github.com/san-kum/swervesim/internal/hardware/simhw
package hardware

// DriveMotor commands the wheel motor and reports its integrated encoder.
// Velocity is motor rotations per second and Position is motor rotations,
// both before any gear or wheel conversion.
type DriveMotor interface {
	SetVoltage(volts float64) error
	Velocity() (float64, error)
	Position() (float64, error)
}

// TurningMotor commands the steering motor.
type TurningMotor interface {
	SetVoltage(volts float64) error
}

// AbsoluteEncoder reports the steering angle as a fraction of one turn.
// With DiscontinuityPoint 1 the range is [0, 1).
type AbsoluteEncoder interface {
	AbsolutePosition() (float64, error)
}

// Configurator applies sensor configuration. A non-nil error means the
// configuration did not take.
type Configurator interface {
	ApplyConfig(enc AbsoluteEncoder, cfg EncoderConfig) error
}

// EncoderConfig is the magnet-sensor configuration for an absolute encoder.
type EncoderConfig struct {
	// MagnetOffset is added to the raw reading, in rotations.
	MagnetOffset float64
	// DiscontinuityPoint is where the reported value wraps. 1 yields an
	// unsigned [0, 1) range, 0.5 a signed [-0.5, 0.5) range.
	DiscontinuityPoint float64
	Inverted           bool
}

// IdleMode is the behaviour of a motor given zero output.
type IdleMode int

const (
	IdleBrake IdleMode = iota
	IdleCoast
)

func (m IdleMode) String() string {
	if m == IdleCoast {
		return "coast"
	}
	return "brake"
}

// MotorConfig is the per-motor controller configuration.
type MotorConfig struct {
	CurrentLimit float64 // amps
	IdleMode     IdleMode
	Inverted     bool
}

// DefaultMotorConfig is a 40 A limit in brake mode.
func DefaultMotorConfig() MotorConfig {
	return MotorConfig{CurrentLimit: 40, IdleMode: IdleBrake}
}

// WrapAbsolute applies cfg to a raw fraction of a turn.
func WrapAbsolute(raw float64, cfg EncoderConfig) float64 {
	v := raw
	if cfg.Inverted {
		v = -v
	}
	v += cfg.MagnetOffset
	hi := cfg.DiscontinuityPoint
	if hi <= 0 || hi > 1 {
		hi = 1
	}
	lo := hi - 1
	v -= lo
	v -= float64(int64(v))
	if v < 0 {
		v += 1
	}
	return v + lo
}
