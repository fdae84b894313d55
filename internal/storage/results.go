package storage

import (
	"errors"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/dynamo"
	"github.com/san-kum/rlcsim/internal/experiment"
)

// LoadResults rebuilds the sweep results of a saved run. A failed entry
// comes back with no samples and an *experiment.NumericalError.
func (s *Store) LoadResults(runID string) (*RunMetadata, []*experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	obs := circuit.ObservableFor(meta.Topology, meta.Excitation)
	results := make([]*experiment.Result, 0, len(meta.Runs))
	for i, e := range meta.Runs {
		r := &experiment.Result{
			Resistance:      e.Resistance,
			Regime:          e.Regime,
			Alpha:           e.Alpha,
			Omega:           e.Omega,
			DampedFrequency: e.DampedFrequency,
			Integrator:      e.Integrator,
			Observable:      obs,
			Metrics:         e.Metrics,
			StepsTaken:      e.StepsTaken,
			Rejected:        e.Rejected,
		}
		if !e.OK() {
			r.Err = &experiment.NumericalError{
				Resistance: e.Resistance,
				Time:       e.FailedAt,
				Err:        errors.New(e.Error),
			}
			results = append(results, r)
			continue
		}

		series, err := s.LoadSeries(runID, i)
		if err != nil {
			return nil, nil, err
		}
		r.Times, r.Values = series.Times, series.Values
		r.States = make([]dynamo.State, len(series.Times))
		for j := range series.Times {
			r.States[j] = circuit.InitialState{IL: series.IL[j], VC: series.VC[j]}.Pack(meta.Topology)
		}
		results = append(results, r)
	}
	return meta, results, nil
}
