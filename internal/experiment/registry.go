package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/control"
	"github.com/san-kum/rlcsim/internal/dynamo"
	"github.com/san-kum/rlcsim/internal/integrators"
	"github.com/san-kum/rlcsim/internal/metrics"
)

// StiffThreshold is the ratio of the fast to the slow characteristic root
// above which "auto" switches to the implicit stepper.
const StiffThreshold = 1e3

var integratorFactories = map[string]func() dynamo.Integrator{
	"euler":      func() dynamo.Integrator { return integrators.NewEuler() },
	"rk4":        func() dynamo.Integrator { return integrators.NewRK4() },
	"rk45":       func() dynamo.Integrator { return integrators.NewRK45() },
	"rosenbrock": func() dynamo.Integrator { return integrators.NewRosenbrock23() },
}

// IntegratorNames lists the accepted integrator settings, "auto" first.
func IntegratorNames() []string {
	names := make([]string, 0, len(integratorFactories))
	for name := range integratorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{"auto"}, names...)
}

func knownIntegrator(name string) bool {
	if name == "auto" {
		return true
	}
	_, ok := integratorFactories[name]
	return ok
}

// Registry builds the per-run pieces of a simulation. Every call returns
// fresh values, so concurrent runs never share state.
type Registry struct{}

func NewRegistry() *Registry { return &Registry{} }

// Integrator resolves name, choosing for "auto" from the circuit's stiffness.
// It returns the stepper and the name actually used.
func (r *Registry) Integrator(name string, top circuit.Topology, res, l, c float64) (dynamo.Integrator, string, error) {
	if name == "" || name == "auto" {
		name = "rk45"
		if circuit.StiffnessRatio(top, res, l, c) > StiffThreshold {
			name = "rosenbrock"
		}
	}
	fn, ok := integratorFactories[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), name, nil
}

func (r *Registry) Model(top circuit.Topology, res, l, c float64) dynamo.System {
	return circuit.New(top, res, l, c)
}

func (r *Registry) Source(exc circuit.Excitation, magnitude float64) dynamo.Controller {
	if exc == circuit.Step {
		return control.NewStep(magnitude)
	}
	return control.NewNone(1)
}

// DefaultMetrics are attached to every run. Settling is measured on the
// reported observable.
func (r *Registry) DefaultMetrics(sys dynamo.System, obs circuit.Observable) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewSourceEnergy(),
		metrics.NewSettlingTime(obs.Index, metrics.DefaultSettlingBand),
	}
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		ms = append(ms, metrics.NewStoredEnergy(h), metrics.NewEnergyGrowth(h))
	}
	return ms
}
