package dynamo

import (
	"errors"
	"math"
	"testing"
)

type twoByOne struct{}

func (twoByOne) Derive(x State, u Control, t float64) State { return State{x[1], u[0]} }
func (twoByOne) StateDim() int                              { return 2 }
func (twoByOne) ControlDim() int                            { return 1 }

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	s := State{1, 2}
	c := s.Clone()
	c[0] = 99
	if s[0] == 99 {
		t.Error("Clone shares backing array")
	}
}

func TestValidate(t *testing.T) {
	dyn := twoByOne{}

	if err := Validate(dyn, State{0, 0}, Control{0}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate(dyn, State{0}, Control{0}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if err := Validate(dyn, State{0, math.NaN()}, Control{0}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.06, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("SimulationError should unwrap to its cause")
	}
	if err.Error() != ErrInvalidState.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
}
