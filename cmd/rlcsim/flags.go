package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/config"
	"github.com/san-kum/rlcsim/internal/experiment"
	"github.com/san-kum/rlcsim/internal/sim"
)

// circuitFlags are the sweep inputs shared by run, classify, view and tune.
type circuitFlags struct {
	preset      string
	configFile  string
	topology    string
	excitation  string
	inductance  float64
	capacitance float64
	resistances string
	source      float64
	iL          float64
	vC          float64
	tEnd        float64
	samples     int
	integrator  string
	rtol        float64
	atol        float64
	maxSteps    int
	workers     int
	criticalTol float64
}

func (f *circuitFlags) register(cmd *cobra.Command) {
	def := config.DefaultConfig()
	fl := cmd.Flags()
	fl.StringVar(&f.preset, "preset", "", "start from a named preset")
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.topology, "topology", def.Topology.String(), "series or parallel")
	fl.StringVar(&f.excitation, "excitation", def.Excitation.String(), "natural or step")
	fl.Float64VarP(&f.inductance, "inductance", "L", def.Inductance, "inductance (H)")
	fl.Float64VarP(&f.capacitance, "capacitance", "C", def.Capacitance, "capacitance (F)")
	fl.StringVarP(&f.resistances, "resistances", "r", config.FormatResistances(def.Resistances), "comma-separated resistances (ohms)")
	fl.Float64Var(&f.source, "source", *def.Source, "step magnitude: volts in series, amps in parallel")
	fl.Float64Var(&f.iL, "i0", 0, "initial inductor current (A)")
	fl.Float64Var(&f.vC, "v0", 0, "initial capacitor voltage (V)")
	fl.Float64Var(&f.tEnd, "t-end", def.TEnd, "simulated time span (s)")
	fl.IntVar(&f.samples, "samples", def.Samples, "output samples on [0, t-end]")
	fl.StringVar(&f.integrator, "integrator", def.Integrator, "integrator: "+strings.Join(experiment.IntegratorNames(), ", "))
	fl.Float64Var(&f.rtol, "rtol", def.RelTol, "relative tolerance")
	fl.Float64Var(&f.atol, "atol", def.AbsTol, "absolute tolerance")
	fl.IntVar(&f.maxSteps, "max-steps", def.MaxSteps, "step budget per resistance")
	fl.IntVar(&f.workers, "workers", def.Workers, "resistances solved concurrently")
	fl.Float64Var(&f.criticalTol, "critical-tol", def.CriticalTol, "relative tolerance for critical damping")
}

// build layers preset, config file and explicitly set flags, in that order.
func (f *circuitFlags) build(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}

	if f.configFile != "" {
		var err error
		if f.preset != "" {
			cfg, err = config.LoadOver(f.configFile, cfg)
		} else {
			cfg, err = config.Load(f.configFile)
		}
		if err != nil {
			return nil, err
		}
	}

	fl := cmd.Flags()
	if fl.Changed("topology") {
		t, err := circuit.ParseTopology(f.topology)
		if err != nil {
			return nil, &experiment.InputError{Field: "topology", Value: f.topology, Reason: err.Error()}
		}
		cfg.Topology = t
	}
	if fl.Changed("excitation") {
		e, err := circuit.ParseExcitation(f.excitation)
		if err != nil {
			return nil, &experiment.InputError{Field: "excitation", Value: f.excitation, Reason: err.Error()}
		}
		cfg.Excitation = e
	}
	if fl.Changed("resistances") {
		rs, err := config.ParseResistances(f.resistances)
		if err != nil {
			return nil, err
		}
		cfg.Resistances = rs
	}
	if fl.Changed("inductance") {
		cfg.Inductance = f.inductance
	}
	if fl.Changed("capacitance") {
		cfg.Capacitance = f.capacitance
	}
	if fl.Changed("source") {
		cfg.SetSource(f.source)
	}
	if fl.Changed("i0") {
		cfg.InitState.IL = f.iL
	}
	if fl.Changed("v0") {
		cfg.InitState.VC = f.vC
	}
	if fl.Changed("t-end") {
		cfg.TEnd = f.tEnd
	}
	if fl.Changed("samples") {
		cfg.Samples = f.samples
	}
	if fl.Changed("integrator") {
		cfg.Integrator = f.integrator
	}
	if fl.Changed("rtol") {
		cfg.RelTol = f.rtol
	}
	if fl.Changed("atol") {
		cfg.AbsTol = f.atol
	}
	if fl.Changed("max-steps") {
		cfg.MaxSteps = f.maxSteps
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("critical-tol") {
		cfg.CriticalTol = f.criticalTol
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runName labels a saved run: the preset name, or topology and excitation.
func (f *circuitFlags) runName(cfg *config.Config) string {
	if f.preset != "" {
		return f.preset
	}
	return cfg.Topology.String() + "-" + cfg.Excitation.String()
}

// parseGrid reads "name=lo:hi:n" (n evenly spaced values) or "name=a,b,c".
func parseGrid(spec string) (string, []float64, error) {
	name, vals, ok := strings.Cut(spec, "=")
	if !ok {
		return "", nil, fmt.Errorf("grid %q: want name=lo:hi:n or name=a,b,c", spec)
	}
	name = strings.TrimSpace(name)

	if parts := strings.Split(vals, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		n, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("grid %q: bad range", spec)
		}
		return name, sim.Linspace(lo, hi, n), nil
	}

	var out []float64
	for _, p := range strings.Split(vals, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("grid %q: %w", spec, err)
		}
		out = append(out, v)
	}
	return name, out, nil
}
