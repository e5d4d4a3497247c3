package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/metrics"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	rig, err := sim.NewRig(config.DefaultConfig(), sim.RigOptions{})
	if err != nil {
		t.Fatalf("rig: %v", err)
	}
	s := rig.Simulator()
	s.AddMetric(metrics.NewHeadingError())
	return NewModel(s, sim.Scenarios["step"], rig.Period, 12, "front_left")
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveModelAdvancesOnTick(t *testing.T) {
	g := NewWithT(t)
	m := newTestModel(t)

	for i := 0; i < 100; i++ {
		m = update(m, TickMsg(time.Now()))
	}

	g.Expect(m.t).To(BeNumerically("~", 2.0, 1e-9))
	g.Expect(m.last.Mode).To(Equal(swerve.ModeTracking))
	g.Expect(m.last.Measured.Angle.Degrees()).To(BeNumerically("~", 45, 1))
	g.Expect(m.measuredSpeed).To(HaveLen(100))
}

func TestLiveModelPause(t *testing.T) {
	g := NewWithT(t)
	m := newTestModel(t)

	m = update(m, key(" "))
	g.Expect(m.running).To(BeFalse())
	m = update(m, TickMsg(time.Now()))
	g.Expect(m.t).To(BeZero())
}

func TestLiveModelOverrides(t *testing.T) {
	g := NewWithT(t)
	m := newTestModel(t)
	m = update(m, TickMsg(time.Now()))

	m = update(m, key("left"))
	g.Expect(m.override).NotTo(BeNil())
	g.Expect(m.override.State.Angle.Degrees()).To(BeNumerically("~", 60, 1e-9))
	g.Expect(m.override.State.Speed).To(BeNumerically("~", 2.0, 1e-12))

	m = update(m, key("up"))
	g.Expect(m.override.State.Speed).To(BeNumerically("~", 2.25, 1e-12))

	m = update(m, key("s"))
	m = update(m, TickMsg(time.Now()))
	g.Expect(m.last.Mode).To(Equal(swerve.ModeStopped))
	g.Expect(m.last.DriveVolts).To(BeZero())

	m = update(m, key("a"))
	g.Expect(m.override).To(BeNil())
}

func TestLiveModelRestart(t *testing.T) {
	g := NewWithT(t)
	m := newTestModel(t)
	for i := 0; i < 10; i++ {
		m = update(m, TickMsg(time.Now()))
	}

	m = update(m, key("r"))
	g.Expect(m.t).To(BeZero())
	g.Expect(m.headingErr).To(BeEmpty())
}

func TestLiveModelView(t *testing.T) {
	g := NewWithT(t)
	m := newTestModel(t)
	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))

	out := m.View()
	g.Expect(out).To(ContainSubstring("FRONT_LEFT"))
	g.Expect(out).To(ContainSubstring("tracking"))
	g.Expect(out).To(ContainSubstring("heading_error"))
}

func TestCanvasSpoke(t *testing.T) {
	c := NewCanvas(4, 4)
	c.DrawSpoke(4, 8, 6, 0, 0)
	// straight up from the center lights column 4 (cell 2) rows 2..8
	if c.Grid[0][2] == brailleBlank || c.Grid[1][2] == brailleBlank {
		t.Errorf("expected vertical spoke:\n%s", c.String())
	}
	if strings.Count(c.String(), "\n") != 4 {
		t.Error("expected four rows")
	}
}

func TestVoltBar(t *testing.T) {
	if got := VoltBar(0, 12, 8); got != "░░░░│░░░░" {
		t.Errorf("zero bar = %q", got)
	}
	if got := VoltBar(-12, 12, 8); got != "████│░░░░" {
		t.Errorf("negative bar = %q", got)
	}
	if got := VoltBar(6, 12, 8); got != "░░░░│██░░" {
		t.Errorf("half bar = %q", got)
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 4)
	if []rune(got)[0] != '▁' || []rune(got)[3] != '█' || len([]rune(got)) != 4 {
		t.Errorf("sparkline = %q", got)
	}
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
}
