package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInductance  = 1e-3
	DefaultCapacitance = 1e-6
	DefaultResistance  = 63.2
	DefaultSource      = 5.0
	DefaultTEnd        = 1e-3
	DefaultWorkers     = 1
)

// Config is the on-disk form of a sweep.
type Config struct {
	Topology    circuit.Topology     `yaml:"topology"`
	Excitation  circuit.Excitation   `yaml:"excitation"`
	Inductance  float64              `yaml:"inductance"`
	Capacitance float64              `yaml:"capacitance"`
	Resistances []float64            `yaml:"resistances"`
	Source      *float64             `yaml:"source,omitempty"`
	InitState   circuit.InitialState `yaml:"init_state"`
	TEnd        float64              `yaml:"t_end"`
	Samples     int                  `yaml:"samples,omitempty"`

	Integrator  string  `yaml:"integrator,omitempty"`
	RelTol      float64 `yaml:"rtol,omitempty"`
	AbsTol      float64 `yaml:"atol,omitempty"`
	MaxSteps    int     `yaml:"max_steps,omitempty"`
	Workers     int     `yaml:"workers,omitempty"`
	CriticalTol float64 `yaml:"critical_tol,omitempty"`
}

// DefaultConfig is the series step response at R = 63.2 ohms.
func DefaultConfig() *Config {
	src := DefaultSource
	return &Config{
		Topology:    circuit.Series,
		Excitation:  circuit.Step,
		Inductance:  DefaultInductance,
		Capacitance: DefaultCapacitance,
		Resistances: []float64{DefaultResistance},
		Source:      &src,
		TEnd:        DefaultTEnd,
		Samples:     experiment.DefaultSamples,
		Integrator:  experiment.DefaultIntegrator,
		RelTol:      experiment.DefaultRelTol,
		AbsTol:      experiment.DefaultAbsTol,
		MaxSteps:    experiment.DefaultMaxSteps,
		Workers:     DefaultWorkers,
		CriticalTol: circuit.DefaultCriticalTol,
	}
}

// Load reads a YAML file. Circuit fields missing from the file stay unset
// and fail validation; solver settings fall back to their defaults.
func Load(path string) (*Config, error) {
	return decodeFile(path, &Config{})
}

// LoadOver reads a YAML file on top of base. Keys present in the file
// replace base's values; base itself is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	return decodeFile(path, base.Clone())
}

// decodeFile rejects keys that match no field. An empty file leaves cfg
// unchanged.
func decodeFile(path string, cfg *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &experiment.InputError{Field: "config", Value: path, Reason: err.Error()}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Resistances = append([]float64(nil), c.Resistances...)
	if c.Source != nil {
		v := *c.Source
		out.Source = &v
	}
	return &out
}

func (c *Config) SetSource(v float64) { c.Source = &v }

// ToExperiment converts to the solver's input contract with defaults applied.
func (c *Config) ToExperiment() experiment.Config {
	return experiment.Config{
		Topology:    c.Topology,
		Excitation:  c.Excitation,
		Inductance:  c.Inductance,
		Capacitance: c.Capacitance,
		Resistances: append([]float64(nil), c.Resistances...),
		Source:      c.Source,
		Init:        c.InitState,
		TEnd:        c.TEnd,
		Samples:     c.Samples,
		Integrator:  c.Integrator,
		RelTol:      c.RelTol,
		AbsTol:      c.AbsTol,
		MaxSteps:    c.MaxSteps,
		Workers:     c.Workers,
		CriticalTol: c.CriticalTol,
	}.WithDefaults()
}

// Validate applies the solver's checks and additionally requires at least
// one resistance value.
func (c *Config) Validate() error {
	err := c.ToExperiment().Validate()
	if len(c.Resistances) == 0 {
		empty := &experiment.InputError{Field: "resistances", Reason: "at least one value is required"}
		return errors.Join(empty, err)
	}
	return err
}

// ParseResistances parses a comma-separated list such as "50, 10,200".
// Order is kept. A blank string gives an empty list.
func ParseResistances(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return []float64{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, &experiment.InputError{
				Field:  fmt.Sprintf("resistances[%d]", i),
				Value:  p,
				Reason: "not a number",
			}
		}
		out[i] = v
	}
	return out, nil
}

// FormatResistances is the inverse of ParseResistances.
func FormatResistances(rs []float64) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = strconv.FormatFloat(r, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
