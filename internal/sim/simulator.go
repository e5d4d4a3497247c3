package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/swervesim/internal/dynamo"
)

type Simulator struct {
	module    Controller
	plant     Plant
	metrics   []Metric
	observers []Observer
}

func New(module Controller, plant Plant) *Simulator {
	return &Simulator{
		module:    module,
		plant:     plant,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run drives the module through sc, one control tick per period, and
// steps the plant between ticks.
func (s *Simulator) Run(ctx context.Context, sc Scenario, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Period + 0.5)
	result := &Result{
		Scenario: sc.Name,
		Frames:   make([]Frame, 0, steps),
		Errors:   make([]error, 0),
	}

	s.ResetMetrics()

	var ticker *time.Ticker
	if cfg.Realtime {
		ticker = time.NewTicker(time.Duration(cfg.Period * float64(time.Second)))
		defer ticker.Stop()
	}

	for i := 0; i < steps; i++ {
		t := float64(i) * cfg.Period

		if ticker != nil {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		f, err := s.Step(sc.At(t), t, cfg.Period)
		result.Frames = append(result.Frames, f)
		if err != nil {
			if errors.Is(err, dynamo.ErrInvalidState) {
				result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: err.Error()})
				break
			}
			result.Errors = append(result.Errors, err)
		}
		result.StepsTaken++
	}

	result.Metrics = s.Metrics()
	return result, nil
}

// Step applies cmd to the module at time t, reports the resulting frame
// to metrics and observers, then advances the plant by dt.
func (s *Simulator) Step(cmd Command, t, dt float64) (Frame, error) {
	f := s.tick(cmd, t)
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnFrame(f)
	}
	return f, s.plant.Step(dt)
}

// Metrics returns the current value of every registered metric.
func (s *Simulator) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Simulator) ResetMetrics() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Simulator) tick(cmd Command, t float64) Frame {
	switch cmd.Action {
	case ActionTrack:
		s.module.SetDesiredState(cmd.State)
	case ActionLock:
		s.module.LockTurningAtZero()
	default:
		s.module.ForceStop()
	}

	last := s.module.LastCommand()
	return Frame{
		Time:       t,
		Mode:       last.Mode,
		Desired:    last.Desired,
		Optimized:  last.Optimized,
		Measured:   s.module.State(),
		Position:   s.module.Position(),
		DriveVolts: last.DriveVolts,
		TurnVolts:  last.TurnVolts,
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Period <= 0 {
		return fmt.Errorf("period must be positive, got %f", cfg.Period)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Duration < cfg.Period {
		return fmt.Errorf("duration %f shorter than one period", cfg.Duration)
	}
	return nil
}
