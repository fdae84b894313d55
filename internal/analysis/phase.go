package analysis

import (
	"strings"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/dynamo"
)

type Point struct{ X, Y float64 }

// PhasePortrait is a run's trajectory in the (i_L, v_C) plane.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePortrait unpacks sampled states of the given topology into
// (i_L, v_C) points.
func NewPhasePortrait(top circuit.Topology, states []dynamo.State) *PhasePortrait {
	p := &PhasePortrait{
		XLabel: "i_L (A)",
		YLabel: "v_C (V)",
		Points: make([]Point, 0, len(states)),
	}
	for _, x := range states {
		iL, vC := circuit.Unpack(top, x)
		p.Points = append(p.Points, Point{X: iL, Y: vC})
	}
	return p
}

// PhasePortraitToASCII draws the trajectory on a width×height character grid
// with axes through the origin when it is in view.
func PhasePortraitToASCII(portrait *PhasePortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	pad := func(lo, hi float64) (float64, float64) {
		span := hi - lo
		if span == 0 {
			span = max(1, 2*max(-lo, hi))
		}
		return lo - 0.1*span, hi + 0.1*span
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)

	col := func(x float64) int { return int((x - minX) / (maxX - minX) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/(maxY-minY)*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
