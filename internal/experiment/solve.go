package experiment

import (
	"context"
	"errors"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/dynamo"
	"github.com/san-kum/rlcsim/internal/sim"
)

// Result is the transient response for one resistance value.
type Result struct {
	Resistance      float64        `json:"resistance"`
	Regime          circuit.Regime `json:"regime"`
	Alpha           float64        `json:"alpha"`
	Omega           float64        `json:"omega"`
	DampedFrequency float64        `json:"damped_frequency"`
	Integrator      string         `json:"integrator"`

	Times      []float64          `json:"times"`
	States     []dynamo.State     `json:"states"`
	Observable circuit.Observable `json:"observable"`
	Values     []float64          `json:"values"`

	Metrics    map[string]float64 `json:"metrics"`
	StepsTaken int                `json:"steps_taken"`
	Rejected   int                `json:"rejected"`

	// Err is set when the integration failed. Times, States and Values are
	// then empty; the classification fields are still valid.
	Err error `json:"-"`
}

func (r *Result) OK() bool { return r.Err == nil }

// TimesMicro returns the sample times in microseconds.
func (r *Result) TimesMicro() []float64 {
	return circuit.Microseconds(r.Times)
}

// Solve integrates one circuit over [0, TEnd] and samples it on cfg's grid.
// An integration failure returns the classified result together with a
// *NumericalError. Invalid input returns an *InputError and no result.
func Solve(ctx context.Context, cfg Config, resistance float64) (*Result, error) {
	if errs := cfg.validateCircuit(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := checkResistance("resistance", resistance); err != nil {
		return nil, err
	}
	return solve(ctx, NewRegistry(), cfg.WithDefaults(), resistance)
}

func solve(ctx context.Context, reg *Registry, cfg Config, res float64) (*Result, error) {
	l, c := cfg.Inductance, cfg.Capacitance
	obs := circuit.ObservableFor(cfg.Topology, cfg.Excitation)

	result := &Result{
		Resistance:      res,
		Regime:          circuit.ClassifyTol(cfg.Topology, res, l, c, cfg.CriticalTol),
		Alpha:           circuit.Alpha(cfg.Topology, res, l, c),
		Omega:           circuit.ResonantFrequency(l, c),
		DampedFrequency: circuit.DampedFrequency(cfg.Topology, res, l, c),
		Observable:      obs,
		Times:           []float64{},
		States:          []dynamo.State{},
		Values:          []float64{},
		Metrics:         map[string]float64{},
	}

	integ, name, err := reg.Integrator(cfg.Integrator, cfg.Topology, res, l, c)
	if err != nil {
		return nil, &InputError{Field: "integrator", Value: cfg.Integrator, Reason: err.Error()}
	}
	result.Integrator = name

	sys := reg.Model(cfg.Topology, res, l, c)
	s := sim.New(sys, integ, reg.Source(cfg.Excitation, cfg.SourceValue()))
	for _, m := range reg.DefaultMetrics(sys, obs) {
		s.AddMetric(m)
	}

	simCfg := dynamo.Config{
		Duration:      cfg.TEnd,
		RelTol:        cfg.RelTol,
		AbsTol:        cfg.AbsTol,
		MaxSteps:      cfg.MaxSteps,
		Adaptive:      true,
		ValidateState: true,
	}

	out, err := s.Run(ctx, cfg.Init.Pack(cfg.Topology), simCfg, cfg.SampleTimes())
	if out != nil {
		result.StepsTaken = out.StepsTaken
		result.Rejected = out.Rejected
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		numErr := &NumericalError{Resistance: res, Err: err}
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			numErr.Time = simErr.Time
		}
		result.Err = numErr
		return result, numErr
	}

	result.Times = out.Times
	result.States = out.States
	result.Values = obs.Extract(out.States)
	result.Metrics = out.Metrics
	return result, nil
}
