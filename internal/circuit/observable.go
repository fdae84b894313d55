package circuit

import (
	"fmt"
	"strconv"

	"github.com/san-kum/rlcsim/internal/dynamo"
)

// TimeScale converts seconds to the microsecond display axis.
const TimeScale = 1e6

// Observable selects and scales the state component reported for a
// topology/excitation pair.
type Observable struct {
	Symbol   string
	Quantity string
	Unit     string
	Index    int
	Scale    float64
}

var (
	voltage     = Observable{Symbol: "v", Quantity: "Voltage", Unit: "V", Scale: 1}
	milliampere = Observable{Symbol: "i", Quantity: "Current", Unit: "mA", Scale: 1e3}
)

// ObservableFor returns the reported quantity:
//
//	parallel natural  v(t)  state[0]  V
//	parallel step     i(t)  state[1]  mA
//	series   natural  i(t)  state[0]  mA
//	series   step     v(t)  state[1]  V
func ObservableFor(t Topology, e Excitation) Observable {
	var o Observable
	switch {
	case t == Parallel && e == Natural:
		o, o.Index = voltage, 0
	case t == Parallel && e == Step:
		o, o.Index = milliampere, 1
	case t == Series && e == Natural:
		o, o.Index = milliampere, 0
	default:
		o, o.Index = voltage, 1
	}
	return o
}

// Extract returns the scaled observable for every sampled state.
func (o Observable) Extract(states []dynamo.State) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		out[i] = x[o.Index] * o.Scale
	}
	return out
}

func (o Observable) AxisLabel() string {
	return fmt.Sprintf("%s (%s)", o.Quantity, o.Unit)
}

// Legend labels one series of a sweep, e.g. "v(t) at R = 63.2".
func (o Observable) Legend(r float64) string {
	return fmt.Sprintf("%s(t) at R = %s", o.Symbol, strconv.FormatFloat(r, 'g', -1, 64))
}

// Column is the CSV column name, e.g. "v_V" or "i_mA".
func (o Observable) Column() string {
	return o.Symbol + "_" + o.Unit
}

// Microseconds rescales a time axis in seconds for display.
func Microseconds(times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = t * TimeScale
	}
	return out
}
