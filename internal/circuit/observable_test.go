package circuit

import (
	"math"
	"testing"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

func TestObservableFor(t *testing.T) {
	tests := []struct {
		top   Topology
		exc   Excitation
		sym   string
		index int
		scale float64
		label string
	}{
		{Parallel, Natural, "v", 0, 1, "Voltage (V)"},
		{Parallel, Step, "i", 1, 1000, "Current (mA)"},
		{Series, Natural, "i", 0, 1000, "Current (mA)"},
		{Series, Step, "v", 1, 1, "Voltage (V)"},
	}

	for _, tt := range tests {
		o := ObservableFor(tt.top, tt.exc)
		if o.Symbol != tt.sym || o.Index != tt.index || o.Scale != tt.scale {
			t.Errorf("%s/%s: got %+v", tt.top, tt.exc, o)
		}
		if o.AxisLabel() != tt.label {
			t.Errorf("%s/%s: axis label %q, want %q", tt.top, tt.exc, o.AxisLabel(), tt.label)
		}
	}
}

func TestObservableExtract(t *testing.T) {
	states := []dynamo.State{{0.002, 1.5}, {0.004, 3.0}}

	cur := ObservableFor(Series, Natural).Extract(states)
	if math.Abs(cur[0]-2) > 1e-12 || math.Abs(cur[1]-4) > 1e-12 {
		t.Errorf("series natural current in mA: got %v", cur)
	}

	volt := ObservableFor(Series, Step).Extract(states)
	if volt[0] != 1.5 || volt[1] != 3.0 {
		t.Errorf("series step voltage: got %v", volt)
	}
}

func TestObservableLabels(t *testing.T) {
	o := ObservableFor(Series, Step)
	if got := o.Legend(63.2); got != "v(t) at R = 63.2" {
		t.Errorf("Legend = %q", got)
	}
	if got := ObservableFor(Parallel, Step).Column(); got != "i_mA" {
		t.Errorf("Column = %q", got)
	}

	us := Microseconds([]float64{0, 1e-6, 2.5e-3})
	if math.Abs(us[1]-1) > 1e-9 || math.Abs(us[2]-2500) > 1e-9 {
		t.Errorf("Microseconds = %v", us)
	}
}
