package config

import (
	"fmt"
	"sort"
)

// Presets are robot variants that differ in reduction and tuning.
var Presets = map[string]func(*Config){
	"mk4i-l1": func(c *Config) {
		c.Consts.DriveGearRatio = 8.14
		c.Consts.DriveKv = 2.71
	},
	"mk4i-l2": func(c *Config) {
		c.Consts.DriveGearRatio = 6.75
		c.Consts.DriveKv = 2.25
	},
	"mk4i-l3": func(c *Config) {
		c.Consts.DriveGearRatio = 6.12
		c.Consts.DriveKv = 2.04
	},
	"maxswerve": func(c *Config) {
		c.Consts.WheelRadius = 0.0381
		c.Consts.DriveGearRatio = 4.71
		c.Consts.DriveKv = 2.08
		c.Consts.TurnKp = 3.0
	},
	"sluggish": func(c *Config) {
		c.Consts.DriveKp = 0.1
		c.Consts.TurnKp = 1.0
		c.Sim.DriveTau = 0.2
		c.Sim.SteerTau = 0.08
	},
}

// GetPreset returns the default config with the named variant applied.
func GetPreset(name string) *Config {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset(name); err != nil {
		return nil
	}
	return cfg
}

// ApplyPreset overlays the named variant onto c.
func (c *Config) ApplyPreset(name string) error {
	apply, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset: %s", name)
	}
	c.Robot = name
	apply(c)
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
