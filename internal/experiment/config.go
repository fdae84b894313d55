package experiment

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/sim"
)

const (
	DefaultSamples    = 1000
	DefaultRelTol     = 1e-3
	DefaultAbsTol     = 1e-6
	DefaultMaxSteps   = 500000
	DefaultIntegrator = "auto"
)

// Config is the input contract of one sweep.
type Config struct {
	Topology    circuit.Topology
	Excitation  circuit.Excitation
	Inductance  float64
	Capacitance float64
	Resistances []float64

	// Source is the step magnitude in volts (series) or amps (parallel).
	// It must be set for step excitation and is ignored otherwise.
	Source *float64
	Init   circuit.InitialState

	TEnd    float64
	Samples int

	Integrator  string
	RelTol      float64
	AbsTol      float64
	MaxSteps    int
	Workers     int
	CriticalTol float64
}

// WithDefaults fills zero-valued solver settings.
func (c Config) WithDefaults() Config {
	if c.Samples == 0 {
		c.Samples = DefaultSamples
	}
	if c.Integrator == "" {
		c.Integrator = DefaultIntegrator
	}
	if c.RelTol == 0 {
		c.RelTol = DefaultRelTol
	}
	if c.AbsTol == 0 {
		c.AbsTol = DefaultAbsTol
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.CriticalTol == 0 {
		c.CriticalTol = circuit.DefaultCriticalTol
	}
	return c
}

// SourceValue is the forcing magnitude, zero for natural response.
func (c Config) SourceValue() float64 {
	if c.Excitation != circuit.Step || c.Source == nil {
		return 0
	}
	return *c.Source
}

// SampleTimes is the output grid: Samples evenly spaced points on [0, TEnd].
func (c Config) SampleTimes() []float64 {
	n := c.Samples
	if n == 0 {
		n = DefaultSamples
	}
	return sim.Linspace(0, c.TEnd, n)
}

// Validate checks every field and reports all problems at once. An empty
// resistance list is accepted here.
func (c Config) Validate() error {
	errs := c.validateCircuit()
	for i, r := range c.Resistances {
		if err := checkResistance(fmt.Sprintf("resistances[%d]", i), r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c Config) validateCircuit() []error {
	var errs []error
	if c.Topology != circuit.Series && c.Topology != circuit.Parallel {
		errs = append(errs, &InputError{Field: "topology", Value: int(c.Topology), Reason: "must be series or parallel"})
	}
	if c.Excitation != circuit.Natural && c.Excitation != circuit.Step {
		errs = append(errs, &InputError{Field: "excitation", Value: int(c.Excitation), Reason: "must be natural or step"})
	}
	errs = appendPositive(errs, "inductance", c.Inductance)
	errs = appendPositive(errs, "capacitance", c.Capacitance)
	errs = appendPositive(errs, "t_end", c.TEnd)

	if c.Excitation == circuit.Step {
		switch {
		case c.Source == nil:
			errs = append(errs, &InputError{Field: "source", Reason: "required for step excitation"})
		case !finite(*c.Source):
			errs = append(errs, &InputError{Field: "source", Value: *c.Source, Reason: "must be a finite number"})
		}
	}
	if !finite(c.Init.IL) {
		errs = append(errs, &InputError{Field: "init_state.i_l", Value: c.Init.IL, Reason: "must be a finite number"})
	}
	if !finite(c.Init.VC) {
		errs = append(errs, &InputError{Field: "init_state.v_c", Value: c.Init.VC, Reason: "must be a finite number"})
	}

	if c.Samples != 0 && c.Samples < 2 {
		errs = append(errs, &InputError{Field: "samples", Value: c.Samples, Reason: "must be at least 2"})
	}
	if c.Integrator != "" && !knownIntegrator(c.Integrator) {
		errs = append(errs, &InputError{Field: "integrator", Value: c.Integrator,
			Reason: fmt.Sprintf("must be one of %v", IntegratorNames())})
	}
	if c.RelTol < 0 || math.IsNaN(c.RelTol) {
		errs = append(errs, &InputError{Field: "rtol", Value: c.RelTol, Reason: "must not be negative"})
	}
	if c.AbsTol < 0 || math.IsNaN(c.AbsTol) {
		errs = append(errs, &InputError{Field: "atol", Value: c.AbsTol, Reason: "must not be negative"})
	}
	if c.MaxSteps < 0 {
		errs = append(errs, &InputError{Field: "max_steps", Value: c.MaxSteps, Reason: "must not be negative"})
	}
	if c.Workers < 0 {
		errs = append(errs, &InputError{Field: "workers", Value: c.Workers, Reason: "must not be negative"})
	}
	if c.CriticalTol < 0 || math.IsNaN(c.CriticalTol) {
		errs = append(errs, &InputError{Field: "critical_tol", Value: c.CriticalTol, Reason: "must not be negative"})
	}
	return errs
}

func checkResistance(field string, r float64) error {
	if !finite(r) || r <= 0 {
		return &InputError{
			Field:  field,
			Value:  r,
			Reason: "resistance must be a positive finite number",
		}
	}
	return nil
}

func appendPositive(errs []error, field string, v float64) []error {
	if !finite(v) || v <= 0 {
		return append(errs, &InputError{Field: field, Value: v, Reason: "must be a positive finite number"})
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
