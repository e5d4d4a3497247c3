package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/swervesim/internal/dynamo"
	"github.com/san-kum/swervesim/internal/integrators"
)

func settle(p *ModulePlant, u dynamo.Control, seconds float64) dynamo.State {
	rk4 := integrators.NewRK4()
	x := make(dynamo.State, p.StateDim())
	dt := 0.001
	for i := 0; i < int(seconds/dt); i++ {
		x = rk4.Step(p, x, u, float64(i)*dt, dt)
	}
	return x
}

func TestModulePlantDriveSteadyState(t *testing.T) {
	p := NewModulePlant(DefaultModuleParams())
	x := settle(p, dynamo.Control{6.0, 0}, 1.0)

	want := (6.0 - p.DriveFriction) / p.NominalVoltage * p.DriveFreeSpeed
	if math.Abs(x[DriveVel]-want) > 0.01*want {
		t.Errorf("drive velocity = %.3f, want ~%.3f", x[DriveVel], want)
	}
	if x[DrivePos] <= 0 {
		t.Error("drive position should advance under positive voltage")
	}
	if x[SteerAngle] != 0 || x[SteerRate] != 0 {
		t.Errorf("steering moved without voltage: %v", x)
	}
}

func TestModulePlantFrictionDeadband(t *testing.T) {
	p := NewModulePlant(DefaultModuleParams())
	x := settle(p, dynamo.Control{p.DriveFriction / 2, 0}, 0.5)
	if x[DriveVel] != 0 {
		t.Errorf("voltage below friction should not move the wheel, got %v", x[DriveVel])
	}
}

func TestModulePlantClampsVoltage(t *testing.T) {
	p := NewModulePlant(DefaultModuleParams())
	x := settle(p, dynamo.Control{0, 100}, 1.0)
	if math.Abs(x[SteerRate]-p.SteerFreeRate) > 0.01 {
		t.Errorf("steer rate = %.3f, want free rate %.3f", x[SteerRate], p.SteerFreeRate)
	}
}

func TestModulePlantParams(t *testing.T) {
	p := NewModulePlant(DefaultModuleParams())

	if err := p.SetParam("drive_tau", 0.2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if p.GetParams()["drive_tau"] != 0.2 {
		t.Error("drive_tau not updated")
	}
	if err := p.SetParam("steer_tau", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := p.SetParam("drive_friction", 0); err != nil {
		t.Errorf("zero friction should be allowed: %v", err)
	}
	if err := p.SetParam("mass", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}
