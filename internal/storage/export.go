package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rlcsim/internal/experiment"
)

type ExportRun struct {
	RunEntry
	Column string    `json:"column,omitempty"`
	Times  []float64 `json:"times,omitempty"`
	IL     []float64 `json:"i_l,omitempty"`
	VC     []float64 `json:"v_c,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

type ExportData struct {
	ID          string      `json:"id,omitempty"`
	Topology    string      `json:"topology"`
	Excitation  string      `json:"excitation"`
	Inductance  float64     `json:"inductance"`
	Capacitance float64     `json:"capacitance"`
	Source      *float64    `json:"source,omitempty"`
	TEnd        float64     `json:"t_end"`
	Runs        []ExportRun `json:"runs"`
}

// ExportJSON writes a saved run with its samples inlined.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := exportHeader(meta)
	data.ID = meta.ID
	for i, entry := range meta.Runs {
		run := ExportRun{RunEntry: entry}
		if entry.OK() {
			series, err := s.LoadSeries(runID, i)
			if err != nil {
				return err
			}
			run.Column = series.Column
			run.Times, run.IL, run.VC, run.Values = series.Times, series.IL, series.VC, series.Values
		}
		data.Runs = append(data.Runs, run)
	}

	return encode(w, data)
}

// ExportResults writes freshly computed results without touching the store.
func ExportResults(w io.Writer, cfg experiment.Config, results []*experiment.Result) error {
	data := ExportData{
		Topology:    cfg.Topology.String(),
		Excitation:  cfg.Excitation.String(),
		Inductance:  cfg.Inductance,
		Capacitance: cfg.Capacitance,
		Source:      cfg.Source,
		TEnd:        cfg.TEnd,
		Runs:        make([]ExportRun, 0, len(results)),
	}

	for i, res := range results {
		run := ExportRun{RunEntry: RunEntry{
			Index:           i,
			Resistance:      res.Resistance,
			Regime:          res.Regime,
			Alpha:           res.Alpha,
			Omega:           res.Omega,
			DampedFrequency: res.DampedFrequency,
			Integrator:      res.Integrator,
			StepsTaken:      res.StepsTaken,
			Rejected:        res.Rejected,
			Metrics:         res.Metrics,
		}}
		if res.OK() {
			run.Column = res.Observable.Column()
			run.Times, run.Values = res.Times, res.Values
		} else {
			run.Error, run.FailedAt = failure(res.Err)
		}
		data.Runs = append(data.Runs, run)
	}

	return encode(w, data)
}

// ExportJSONFile is ExportJSON into a new file at path.
func (s *Store) ExportJSONFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.ExportJSON(file, runID)
}

func exportHeader(meta *RunMetadata) ExportData {
	return ExportData{
		Topology:    meta.Topology.String(),
		Excitation:  meta.Excitation.String(),
		Inductance:  meta.Inductance,
		Capacitance: meta.Capacitance,
		Source:      meta.Source,
		TEnd:        meta.TEnd,
		Runs:        make([]ExportRun, 0, len(meta.Runs)),
	}
}

func encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
