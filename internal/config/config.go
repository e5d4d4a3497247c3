package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/swervesim/internal/physics"
	"github.com/san-kum/swervesim/internal/swerve"
)

const (
	CurrentVersion    = "1.0.0"
	versionConstraint = ">= 1.0.0, < 2.0.0"
	EnvPrefix         = "SWERVE_"

	DefaultPeriod     = 0.02
	DefaultDuration   = 5.0
	DefaultIntegrator = "rk4"
)

var (
	ErrUnsupportedVersion = errors.New("config: unsupported version")
	ErrInvalid            = errors.New("config: invalid")
)

type Config struct {
	Version  string          `yaml:"version"`
	Robot    string          `yaml:"robot"`
	LogLevel string          `yaml:"log_level"`
	Consts   ConstantsConfig `yaml:"constants"`
	Modules  []ModuleConfig  `yaml:"modules"`
	Sim      SimConfig       `yaml:"sim"`
}

type ConstantsConfig struct {
	WheelRadius    float64 `yaml:"wheel_radius" env:"WHEEL_RADIUS"`
	DriveGearRatio float64 `yaml:"drive_gear_ratio" env:"DRIVE_GEAR_RATIO"`
	DriveKp        float64 `yaml:"drive_kp" env:"DRIVE_KP"`
	DriveKs        float64 `yaml:"drive_ks" env:"DRIVE_KS"`
	DriveKv        float64 `yaml:"drive_kv" env:"DRIVE_KV"`
	DriveKa        float64 `yaml:"drive_ka" env:"DRIVE_KA"`
	TurnKp         float64 `yaml:"turn_kp" env:"TURN_KP"`
	Period         float64 `yaml:"period" env:"PERIOD"`
}

type ModuleConfig struct {
	Name           string  `yaml:"name"`
	DriveMotor     int     `yaml:"drive_motor"`
	TurningMotor   int     `yaml:"turning_motor"`
	TurningEncoder int     `yaml:"turning_encoder"`
	CANBus         string  `yaml:"can_bus"`
	InvertDrive    bool    `yaml:"invert_drive"`
	InvertTurning  bool    `yaml:"invert_turning"`
	EncoderOffset  float64 `yaml:"encoder_offset"`
}

type SimConfig struct {
	Integrator     string  `yaml:"integrator" env:"INTEGRATOR"`
	Duration       float64 `yaml:"duration" env:"DURATION"`
	NominalVoltage float64 `yaml:"nominal_voltage" env:"NOMINAL_VOLTAGE"`
	DriveFreeSpeed float64 `yaml:"drive_free_speed" env:"DRIVE_FREE_SPEED"`
	DriveTau       float64 `yaml:"drive_tau" env:"DRIVE_TAU"`
	DriveFriction  float64 `yaml:"drive_friction" env:"DRIVE_FRICTION"`
	SteerFreeRate  float64 `yaml:"steer_free_rate" env:"STEER_FREE_RATE"`
	SteerTau       float64 `yaml:"steer_tau" env:"STEER_TAU"`
}

func DefaultConfig() *Config {
	k := swerve.DefaultConstants()
	p := physics.DefaultModuleParams()
	return &Config{
		Version:  CurrentVersion,
		Robot:    "mk4i-l2",
		LogLevel: "info",
		Consts: ConstantsConfig{
			WheelRadius:    k.WheelRadius,
			DriveGearRatio: k.DriveGearRatio,
			DriveKp:        k.DriveKp,
			DriveKs:        k.DriveKs,
			DriveKv:        k.DriveKv,
			DriveKa:        k.DriveKa,
			TurnKp:         k.TurnKp,
			Period:         DefaultPeriod,
		},
		Modules: []ModuleConfig{
			{Name: "front_left", DriveMotor: 1, TurningMotor: 2, TurningEncoder: 3, CANBus: "rio"},
			{Name: "front_right", DriveMotor: 4, TurningMotor: 5, TurningEncoder: 6, CANBus: "rio"},
			{Name: "back_left", DriveMotor: 7, TurningMotor: 8, TurningEncoder: 9, CANBus: "rio"},
			{Name: "back_right", DriveMotor: 10, TurningMotor: 11, TurningEncoder: 12, CANBus: "rio"},
		},
		Sim: SimConfig{
			Integrator:     DefaultIntegrator,
			Duration:       DefaultDuration,
			NominalVoltage: p.NominalVoltage,
			DriveFreeSpeed: p.DriveFreeSpeed,
			DriveTau:       p.DriveTau,
			DriveFriction:  p.DriveFriction,
			SteerFreeRate:  p.SteerFreeRate,
			SteerTau:       p.SteerTau,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads path (or the defaults when path is empty) and then
// applies SWERVE_* environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides constants from SWERVE_<NAME> and simulation settings
// from SWERVE_SIM_<NAME>.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(&c.Consts, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("constants from env: %w", err)
	}
	if err := env.ParseWithOptions(&c.Sim, env.Options{Prefix: EnvPrefix + "SIM_"}); err != nil {
		return fmt.Errorf("sim from env: %w", err)
	}
	if lvl, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = lvl
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrUnsupportedVersion, c.Version, err)
	}
	constraint, err := semver.NewConstraint(versionConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w %s (want %s)", ErrUnsupportedVersion, v, versionConstraint)
	}

	if err := c.Constants().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Consts.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalid, c.Consts.Period)
	}
	if len(c.Modules) == 0 {
		return fmt.Errorf("%w: no modules", ErrInvalid)
	}
	return nil
}

func (c *Config) Constants() swerve.Constants {
	return swerve.Constants{
		WheelRadius:    c.Consts.WheelRadius,
		DriveGearRatio: c.Consts.DriveGearRatio,
		DriveKp:        c.Consts.DriveKp,
		DriveKs:        c.Consts.DriveKs,
		DriveKv:        c.Consts.DriveKv,
		DriveKa:        c.Consts.DriveKa,
		TurnKp:         c.Consts.TurnKp,
		Period:         c.Consts.Period,
	}
}

// Module returns the controller config for the module at index i or with
// the given name.
func (c *Config) Module(key string, i int) (swerve.Config, error) {
	for idx, mc := range c.Modules {
		if (key != "" && mc.Name == key) || (key == "" && idx == i) {
			return swerve.Config{
				DriveMotorChannel:     mc.DriveMotor,
				TurningMotorChannel:   mc.TurningMotor,
				TurningEncoderChannel: mc.TurningEncoder,
				CANBus:                mc.CANBus,
				InvertDrive:           mc.InvertDrive,
				InvertTurning:         mc.InvertTurning,
				TurningEncoderOffset:  mc.EncoderOffset,
				Constants:             c.Constants(),
			}, nil
		}
	}
	if key != "" {
		return swerve.Config{}, fmt.Errorf("unknown module: %s", key)
	}
	return swerve.Config{}, fmt.Errorf("module index %d out of range (%d modules)", i, len(c.Modules))
}

func (c *Config) PlantParams() physics.ModuleParams {
	return physics.ModuleParams{
		NominalVoltage: c.Sim.NominalVoltage,
		DriveFreeSpeed: c.Sim.DriveFreeSpeed,
		DriveTau:       c.Sim.DriveTau,
		DriveFriction:  c.Sim.DriveFriction,
		SteerFreeRate:  c.Sim.SteerFreeRate,
		SteerTau:       c.Sim.SteerTau,
	}
}

// GetParams returns the tunable controller constants by name.
func (c *Config) GetParams() map[string]float64 {
	return map[string]float64{
		"wheel_radius":     c.Consts.WheelRadius,
		"drive_gear_ratio": c.Consts.DriveGearRatio,
		"drive_kp":         c.Consts.DriveKp,
		"drive_ks":         c.Consts.DriveKs,
		"drive_kv":         c.Consts.DriveKv,
		"drive_ka":         c.Consts.DriveKa,
		"turn_kp":          c.Consts.TurnKp,
	}
}

// SetParam sets one controller constant by its yaml name.
func (c *Config) SetParam(name string, value float64) error {
	switch name {
	case "wheel_radius":
		c.Consts.WheelRadius = value
	case "drive_gear_ratio":
		c.Consts.DriveGearRatio = value
	case "drive_kp":
		c.Consts.DriveKp = value
	case "drive_ks":
		c.Consts.DriveKs = value
	case "drive_kv":
		c.Consts.DriveKv = value
	case "drive_ka":
		c.Consts.DriveKa = value
	case "turn_kp":
		c.Consts.TurnKp = value
	default:
		return fmt.Errorf("%w: unknown param %s", ErrInvalid, name)
	}
	return nil
}
