package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	desired  lipgloss.Style
	measured lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	override lipgloss.Style
	hint     lipgloss.Style
	graph    lipgloss.Style
}

func stylesFor(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(15),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		desired:  lipgloss.NewStyle().Foreground(t.Desired),
		measured: lipgloss.NewStyle().Foreground(t.Measured).Bold(true),
		running:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:   lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		override: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		hint:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		graph:    lipgloss.NewStyle().Foreground(t.Secondary),
	}
}

// VoltBar renders volts against ±limit as a bar growing out from the
// center.
func VoltBar(volts, limit float64, width int) string {
	half := width / 2
	n := 0
	if limit > 0 {
		n = int(math.Round(math.Min(math.Abs(volts)/limit, 1) * float64(half)))
	}
	left := strings.Repeat("░", half)
	right := strings.Repeat("░", half)
	if volts < 0 {
		left = strings.Repeat("░", half-n) + strings.Repeat("█", n)
	} else {
		right = strings.Repeat("█", n) + strings.Repeat("░", half-n)
	}
	return left + "│" + right
}

// Sparkline renders the last width values scaled between their min and
// max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
