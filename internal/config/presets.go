package config

import (
	"sort"

	"github.com/san-kum/rlcsim/internal/circuit"
)

type Preset struct {
	Description string
	Config      *Config
}

func source(v float64) *float64 { return &v }

func initial(iL, vC float64) circuit.InitialState {
	return circuit.InitialState{IL: iL, VC: vC}
}

var Presets = map[string]Preset{
	"series-ring": {
		Description: "5 V step into a series RLC just below critical damping",
		Config: &Config{
			Topology: circuit.Series, Excitation: circuit.Step,
			Inductance: 1e-3, Capacitance: 1e-6, Resistances: []float64{63.2},
			Source: source(5), TEnd: 1e-3,
		},
	},
	"series-sweep": {
		Description: "5 V step response across all three damping regimes",
		Config: &Config{
			Topology: circuit.Series, Excitation: circuit.Step,
			Inductance: 1e-3, Capacitance: 1e-6, Resistances: []float64{10, 63.2, 200, 1000},
			Source: source(5), TEnd: 2e-3,
		},
	},
	"series-natural": {
		Description: "series loop discharging a 1 V capacitor",
		Config: &Config{
			Topology: circuit.Series, Excitation: circuit.Natural,
			Inductance: 1e-3, Capacitance: 1e-6, Resistances: []float64{10, 63.2, 500},
			InitState: initial(0, 1), TEnd: 1e-3,
		},
	},
	"parallel-critical": {
		Description: "parallel tank at exactly critical damping, 1 A initial inductor current",
		Config: &Config{
			Topology: circuit.Parallel, Excitation: circuit.Natural,
			Inductance: 1, Capacitance: 1, Resistances: []float64{0.5},
			InitState: initial(1, 0), TEnd: 10,
		},
	},
	"parallel-step": {
		Description: "2 mA current step into a parallel RLC",
		Config: &Config{
			Topology: circuit.Parallel, Excitation: circuit.Step,
			Inductance: 1e-3, Capacitance: 1e-6, Resistances: []float64{5, 15.8, 100},
			Source: source(0.002), TEnd: 2e-3,
		},
	},
	"stiff-overdamped": {
		Description: "series natural response with roots up to nine decades apart",
		Config: &Config{
			Topology: circuit.Series, Excitation: circuit.Natural,
			Inductance: 1e-3, Capacitance: 1e-6, Resistances: []float64{10, 1e4, 1e6},
			InitState: initial(0.01, 1), TEnd: 1e-3,
		},
	},
}

// GetPreset returns a copy of the named preset with solver defaults filled
// in, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Config.Clone()
	def := DefaultConfig()
	cfg.Samples = def.Samples
	cfg.Integrator = def.Integrator
	cfg.RelTol, cfg.AbsTol = def.RelTol, def.AbsTol
	cfg.MaxSteps = def.MaxSteps
	cfg.Workers = def.Workers
	cfg.CriticalTol = def.CriticalTol
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
