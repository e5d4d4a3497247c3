package storage

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/swervesim/internal/sim"
)

const (
	svgWidth  = 800
	svgHeight = 300
)

type trace struct {
	color string
	ys    []float64
}

// ExportSVG draws the setpoint and measured heading of runID against time.
func (s *Store) ExportSVG(runID string, w io.Writer) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, HeadingSVG(frames))
	return err
}

// HeadingSVG renders optimized (dashed) and measured heading traces, in
// degrees, as an SVG document.
func HeadingSVG(frames []sim.Frame) string {
	xs := make([]float64, len(frames))
	set := trace{color: "#ff00ff", ys: make([]float64, len(frames))}
	got := trace{color: "#00ffff", ys: make([]float64, len(frames))}
	for i, f := range frames {
		xs[i] = f.Time
		set.ys[i] = f.Optimized.Angle.Degrees()
		got.ys[i] = f.Measured.Angle.Degrees()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, svgWidth, svgHeight, svgWidth, svgHeight)

	if len(frames) >= 2 {
		minX, maxX := bounds(xs)
		minY, maxY := bounds(append(append([]float64{}, set.ys...), got.ys...))
		project := scaler(minX, maxX, minY, maxY)

		for i, tr := range []trace{set, got} {
			dash := ""
			if i == 0 {
				dash = ` stroke-dasharray="6,4"`
			}
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5"%s d="`, tr.color, dash)
			for j, y := range tr.ys {
				px, py := project(xs[j], y)
				if j == 0 {
					fmt.Fprintf(&sb, "M%.1f,%.1f", px, py)
				} else {
					fmt.Fprintf(&sb, " L%.1f,%.1f", px, py)
				}
			}
			sb.WriteString("\"/>\n")
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// scaler maps data coordinates onto the canvas with 10% padding.
func scaler(minX, maxX, minY, maxY float64) func(x, y float64) (float64, float64) {
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	return func(x, y float64) (float64, float64) {
		return (x - minX) / rangeX * svgWidth, svgHeight - (y-minY)/rangeY*svgHeight
	}
}
