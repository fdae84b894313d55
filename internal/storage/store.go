package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes a saved sweep. The per-resistance samples live in
// the CSV named by each entry.
type RunMetadata struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Timestamp   time.Time            `json:"timestamp"`
	Topology    circuit.Topology     `json:"topology"`
	Excitation  circuit.Excitation   `json:"excitation"`
	Inductance  float64              `json:"inductance"`
	Capacitance float64              `json:"capacitance"`
	Source      *float64             `json:"source,omitempty"`
	Init        circuit.InitialState `json:"init_state"`
	TEnd        float64              `json:"t_end"`
	Samples     int                  `json:"samples"`
	Integrator  string               `json:"integrator"`
	RelTol      float64              `json:"rtol"`
	AbsTol      float64              `json:"atol"`
	MaxSteps    int                  `json:"max_steps"`
	CriticalTol float64              `json:"critical_tol"`
	Runs        []RunEntry           `json:"runs"`
}

type RunEntry struct {
	Index           int                `json:"index"`
	Resistance      float64            `json:"resistance"`
	Regime          circuit.Regime     `json:"regime"`
	Alpha           float64            `json:"alpha"`
	Omega           float64            `json:"omega"`
	DampedFrequency float64            `json:"damped_frequency"`
	Integrator      string             `json:"integrator,omitempty"`
	StepsTaken      int                `json:"steps_taken"`
	Rejected        int                `json:"rejected"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	File            string             `json:"file,omitempty"`
	Error           string             `json:"error,omitempty"`
	FailedAt        float64            `json:"failed_at,omitempty"`
}

func (e RunEntry) OK() bool { return e.Error == "" }

// Config rebuilds the sweep input that produced the run.
func (m *RunMetadata) Config() experiment.Config {
	cfg := experiment.Config{
		Topology:    m.Topology,
		Excitation:  m.Excitation,
		Inductance:  m.Inductance,
		Capacitance: m.Capacitance,
		Source:      m.Source,
		Init:        m.Init,
		TEnd:        m.TEnd,
		Samples:     m.Samples,
		Integrator:  m.Integrator,
		RelTol:      m.RelTol,
		AbsTol:      m.AbsTol,
		MaxSteps:    m.MaxSteps,
		CriticalTol: m.CriticalTol,
	}
	for _, r := range m.Runs {
		cfg.Resistances = append(cfg.Resistances, r.Resistance)
	}
	return cfg
}

func (s *Store) Save(name string, cfg experiment.Config, results []*experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		Topology:    cfg.Topology,
		Excitation:  cfg.Excitation,
		Inductance:  cfg.Inductance,
		Capacitance: cfg.Capacitance,
		Source:      cfg.Source,
		Init:        cfg.Init,
		TEnd:        cfg.TEnd,
		Samples:     cfg.Samples,
		Integrator:  cfg.Integrator,
		RelTol:      cfg.RelTol,
		AbsTol:      cfg.AbsTol,
		MaxSteps:    cfg.MaxSteps,
		CriticalTol: cfg.CriticalTol,
		Runs:        make([]RunEntry, 0, len(results)),
	}

	for i, res := range results {
		entry := RunEntry{
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
		}
		if !res.OK() {
			entry.Error, entry.FailedAt = failure(res.Err)
		} else {
			entry.File = fmt.Sprintf("r%d.csv", i)
			if err := writeSeries(filepath.Join(runDir, entry.File), cfg.Topology, res); err != nil {
				return "", fmt.Errorf("write %s: %w", entry.File, err)
			}
		}
		meta.Runs = append(meta.Runs, entry)
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// failure splits an integration error into the message stored with the
// entry and the time it happened, so LoadResults can rebuild it.
func failure(err error) (string, float64) {
	var ne *experiment.NumericalError
	if errors.As(err, &ne) && ne.Err != nil {
		return ne.Err.Error(), ne.Time
	}
	return err.Error(), 0
}

func writeSeries(path string, top circuit.Topology, res *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time_s", "time_us", "i_l", "v_c", res.Observable.Column()}); err != nil {
		return err
	}

	for i, t := range res.Times {
		iL, vC := circuit.Unpack(top, res.States[i])
		row := []string{
			formatFloat(t),
			formatFloat(t * circuit.TimeScale),
			formatFloat(iL),
			formatFloat(vC),
			formatFloat(res.Values[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Series is one resistance value's samples as read back from disk.
type Series struct {
	Resistance float64
	Column     string
	Times      []float64
	IL         []float64
	VC         []float64
	Values     []float64
}

var ErrNoSeries = errors.New("storage: resistance has no saved samples")

func (s *Store) LoadSeries(runID string, idx int) (*Series, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(meta.Runs) {
		return nil, fmt.Errorf("run %s: index %d out of range [0, %d)", runID, idx, len(meta.Runs))
	}
	entry := meta.Runs[idx]
	if entry.File == "" {
		return nil, fmt.Errorf("run %s index %d: %w", runID, idx, ErrNoSeries)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, entry.File))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 5

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{Resistance: entry.Resistance}
	if len(records) == 0 {
		return series, nil
	}
	series.Column = records[0][4]

	n := len(records) - 1
	series.Times = make([]float64, 0, n)
	series.IL = make([]float64, 0, n)
	series.VC = make([]float64, 0, n)
	series.Values = make([]float64, 0, n)

	for line, record := range records[1:] {
		var vals [5]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", entry.File, line+2, err)
			}
			vals[j] = v
		}
		series.Times = append(series.Times, vals[0])
		series.IL = append(series.IL, vals[2])
		series.VC = append(series.VC, vals[3])
		series.Values = append(series.Values, vals[4])
	}

	return series, nil
}

// SeriesPath is the CSV file of one resistance value.
func (s *Store) SeriesPath(runID string, idx int) (string, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(meta.Runs) {
		return "", fmt.Errorf("run %s: index %d out of range [0, %d)", runID, idx, len(meta.Runs))
	}
	if meta.Runs[idx].File == "" {
		return "", fmt.Errorf("run %s index %d: %w", runID, idx, ErrNoSeries)
	}
	return filepath.Join(s.baseDir, runID, meta.Runs[idx].File), nil
}
