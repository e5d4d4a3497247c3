package viz

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/swervesim/internal/dynamo"
	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/swerve"
)

const (
	width           = 40
	height          = 20
	historyCapacity = 300

	angleNudge = 15.0 // degrees
	speedNudge = 0.25 // m/s
)

type TickMsg time.Time

// Model steps a simulated module once per tick and renders it.
type Model struct {
	sim       *sim.Simulator
	scenario  sim.Scenario
	period    float64
	voltLimit float64
	title     string

	t        float64
	running  bool
	override *sim.Command
	last     sim.Frame
	stepped  bool
	err      error

	desiredSpeed  []float64
	measuredSpeed []float64
	headingErr    []float64

	canvas *Canvas
}

// NewModel builds a live view over s running sc at period seconds per
// tick. voltLimit scales the voltage bars.
func NewModel(s *sim.Simulator, sc sim.Scenario, period, voltLimit float64, title string) Model {
	return Model{
		sim:           s,
		scenario:      sc,
		period:        period,
		voltLimit:     voltLimit,
		title:         title,
		running:       true,
		desiredSpeed:  make([]float64, 0, historyCapacity),
		measuredSpeed: make([]float64, 0, historyCapacity),
		headingErr:    make([]float64, 0, historyCapacity),
		canvas:        NewCanvas(width, height),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.period*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "left", "h":
			m.nudge(angleNudge, 0)
		case "right":
			m.nudge(-angleNudge, 0)
		case "up", "k":
			m.nudge(0, speedNudge)
		case "down", "j":
			m.nudge(0, -speedNudge)
		case "l":
			m.override = &sim.Command{Action: sim.ActionLock}
		case "s":
			m.override = &sim.Command{Action: sim.ActionStop}
		case "a":
			m.override = nil
		case "r":
			m.restart()
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// command is what the module is told to do at the current time.
func (m *Model) command() sim.Command {
	if m.override != nil {
		return *m.override
	}
	return m.scenario.At(m.t)
}

// nudge switches to a manual override offset from the current setpoint.
func (m *Model) nudge(deg, speed float64) {
	cmd := m.command()
	if cmd.Action != sim.ActionTrack {
		cmd = sim.Command{Action: sim.ActionTrack, State: kinematics.NewModuleState(0, m.last.Measured.Angle)}
	}
	cmd.State = kinematics.NewModuleState(
		cmd.State.Speed+speed,
		cmd.State.Angle.Plus(geometry.FromDegrees(deg)),
	)
	m.override = &cmd
}

func (m *Model) advance() {
	f, err := m.sim.Step(m.command(), m.t, m.period)
	m.last = f
	m.stepped = true
	m.t += m.period

	m.desiredSpeed = push(m.desiredSpeed, f.Optimized.Speed)
	m.measuredSpeed = push(m.measuredSpeed, f.Measured.Speed)
	m.headingErr = push(m.headingErr, math.Abs(f.Optimized.Angle.Minus(f.Measured.Angle).Degrees()))

	if err != nil {
		m.err = err
		if errors.Is(err, dynamo.ErrInvalidState) {
			m.running = false
		}
	}
}

func (m *Model) restart() {
	m.t = 0
	m.override = nil
	m.err = nil
	m.desiredSpeed = m.desiredSpeed[:0]
	m.measuredSpeed = m.measuredSpeed[:0]
	m.headingErr = m.headingErr[:0]
	m.sim.ResetMetrics()
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

// draw renders the wheel from above: a rim, the measured heading as a
// solid spoke and the optimized setpoint as a dotted one.
func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.canvas.Size()
	cx, cy := cw/2, ch/2
	r := min(cx, cy) - 2

	m.canvas.DrawCircle(cx, cy, r)
	if !m.stepped {
		return
	}
	m.canvas.DrawSpoke(cx, cy, r, m.last.Measured.Angle.Radians(), 0)
	if m.last.Optimized.Speed != 0 || m.last.Mode == swerve.ModeLocked {
		m.canvas.DrawSpoke(cx, cy, r-3, m.last.Optimized.Angle.Radians(), 3)
	}
}

func (m Model) View() string {
	st := stylesFor(CurrentTheme)
	m.draw()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n\n")

	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	if m.override != nil {
		status += "  " + st.override.Render("MANUAL")
	}
	s.WriteString(status + "\n\n")

	f := m.last
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Scenario", m.scenario.Name)
	row("Mode", f.Mode.String())
	s.WriteString(st.label.Render("Desired") + st.desired.Render(formatState(f.Desired)) + "\n")
	s.WriteString(st.label.Render("Optimized") + st.desired.Render(formatState(f.Optimized)) + "\n")
	s.WriteString(st.label.Render("Measured") + st.measured.Render(formatState(f.Measured)) + "\n")
	row("Distance", fmt.Sprintf("%.3f m", f.Position.Distance))
	row("Drive", fmt.Sprintf("%s %+6.2f V", VoltBar(f.DriveVolts, m.voltLimit, 16), f.DriveVolts))
	row("Turn", fmt.Sprintf("%s %+6.2f V", VoltBar(f.TurnVolts, m.voltLimit, 16), f.TurnVolts))
	row("Head err", Sparkline(m.headingErr, 30))
	if m.err != nil {
		s.WriteString(st.override.Render(m.err.Error()) + "\n")
	}

	if len(m.measuredSpeed) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.desiredSpeed, m.measuredSpeed},
			asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("speed m/s (setpoint, measured)"),
		)
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	if metrics := m.sim.Metrics(); len(metrics) > 0 {
		s.WriteString("\n")
		for _, name := range sortedKeys(metrics) {
			row(name, fmt.Sprintf("%.4f", metrics[name]))
		}
	}

	s.WriteString(st.hint.Render("SP:Pause ←→:Heading ↑↓:Speed L:Lock S:Stop A:Auto R:Restart T:Theme Q:Quit"))

	wheel := st.panel.Render(st.measured.Render(m.canvas.String()))
	return lipgloss.JoinHorizontal(lipgloss.Top, wheel, st.panel.Render(s.String()))
}

func formatState(s kinematics.ModuleState) string {
	return fmt.Sprintf("%+6.2f m/s  %+7.1f°", s.Speed, s.Angle.Degrees())
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
