package hardware

import (
	"math"
	"testing"
)

func TestWrapAbsolute(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		cfg  EncoderConfig
		want float64
	}{
		{"unsigned passthrough", 0.3, EncoderConfig{DiscontinuityPoint: 1}, 0.3},
		{"offset wraps over one", 0.9, EncoderConfig{MagnetOffset: 0.25, DiscontinuityPoint: 1}, 0.15},
		{"negative offset wraps under zero", 0.1, EncoderConfig{MagnetOffset: -0.25, DiscontinuityPoint: 1}, 0.85},
		{"signed range", 0.75, EncoderConfig{DiscontinuityPoint: 0.5}, -0.25},
		{"inverted", 0.25, EncoderConfig{DiscontinuityPoint: 1, Inverted: true}, 0.75},
		{"zero discontinuity defaults to unsigned", 1.5, EncoderConfig{}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapAbsolute(tt.raw, tt.cfg)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("WrapAbsolute(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDefaultMotorConfig(t *testing.T) {
	cfg := DefaultMotorConfig()
	if cfg.CurrentLimit != 40 {
		t.Errorf("current limit = %v, want 40", cfg.CurrentLimit)
	}
	if cfg.IdleMode != IdleBrake || cfg.IdleMode.String() != "brake" {
		t.Errorf("idle mode = %v, want brake", cfg.IdleMode)
	}
}
