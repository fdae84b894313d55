package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/dynamo"
)

func grid(n int, dt float64) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = float64(i) * dt
	}
	return ts
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"slow", 3},
		{"fast", 47.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := grid(1000, 1e-3)
			values := make([]float64, len(times))
			for i, ts := range times {
				values[i] = math.Sin(2 * math.Pi * tt.freq * ts)
			}

			got := DominantFrequency(times, values)
			if math.Abs(got-tt.freq)/tt.freq > 0.05 {
				t.Errorf("DominantFrequency = %g, want %g", got, tt.freq)
			}
		})
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	times := grid(64, 1)
	if got := DominantFrequency(times, make([]float64, 64)); got != 0 {
		t.Errorf("flat signal frequency = %g, want 0", got)
	}
	if got := DominantFrequency(times[:2], []float64{0, 1}); got != 0 {
		t.Errorf("too few samples should give 0, got %g", got)
	}
}

func TestOvershoot(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"rising with overshoot", []float64{0, 6, 4.5, 5}, 20},
		{"falling with overshoot", []float64{5, -1, 0.5, 0}, 20},
		{"monotone", []float64{0, 2, 4, 5}, 0},
		{"no change", []float64{1, 2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overshoot(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Overshoot = %g, want %g", got, tt.expected)
			}
		})
	}
}

func TestPeakTimeAndSettling(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4, 5}
	values := []float64{0, 6, 4.5, 5.05, 4.99, 5}

	if got := PeakTime(times, values); got != 1 {
		t.Errorf("PeakTime = %g, want 1", got)
	}
	if got := SettlingTime(times, values); got != 3 {
		t.Errorf("SettlingTime = %g, want 3", got)
	}

	s := Summarize(times, values)
	if s.Overshoot != 20 || s.PeakTime != 1 || s.Settling != 3 {
		t.Errorf("Summarize = %+v", s)
	}
}

func TestPhasePortrait(t *testing.T) {
	// Parallel packs (v_C, i_L).
	p := NewPhasePortrait(circuit.Parallel, []dynamo.State{{2, 1}, {0, -1}})
	if p.Points[0] != (Point{X: 1, Y: 2}) || p.Points[1] != (Point{X: -1, Y: 0}) {
		t.Errorf("points = %v", p.Points)
	}

	art := PhasePortraitToASCII(p, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if strings.Count(art, "•") != 2 {
		t.Errorf("expected two plotted points:\n%s", art)
	}
	if !strings.Contains(art, "│") {
		t.Errorf("expected a vertical axis:\n%s", art)
	}

	if PhasePortraitToASCII(&PhasePortrait{}, 20, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}
