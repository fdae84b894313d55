package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

func baseConfig() experiment.Config {
	src := 5.0
	return experiment.Config{
		Topology:    circuit.Series,
		Excitation:  circuit.Step,
		Inductance:  1e-3,
		Capacitance: 1e-6,
		Resistances: []float64{10},
		Source:      &src,
		TEnd:        2e-3,
		Samples:     400,
	}
}

func TestGridSearchFindsFastestSettling(t *testing.T) {
	// Critical resistance is 2*sqrt(L/C) = 63.2 ohms.
	g, err := NewGridSearch([]string{"resistance"}, [][]float64{{5, 20, 63.2, 400, 2000}})
	if err != nil {
		t.Fatal(err)
	}

	best, err := g.Search(context.Background(), baseConfig(), "settling_time")
	if err != nil {
		t.Fatal(err)
	}

	if best.Params["resistance"] != 63.2 {
		t.Errorf("best resistance = %g, want 63.2 (settling %g)", best.Params["resistance"], best.Value)
	}
	if best.Evaluated != 5 {
		t.Errorf("evaluated %d points, want 5", best.Evaluated)
	}
	if best.Result == nil || best.Result.Resistance != 63.2 {
		t.Error("best result not recorded")
	}
}

func TestGridSearchTwoParameters(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"resistance", "capacitance"},
		[][]float64{{10, 100}, {1e-6, 4e-6}},
	)
	if err != nil {
		t.Fatal(err)
	}

	best, err := g.Search(context.Background(), baseConfig(), "stored_energy")
	if err != nil {
		t.Fatal(err)
	}
	if best.Evaluated != 4 {
		t.Errorf("evaluated %d points, want 4", best.Evaluated)
	}
	if _, ok := best.Params["capacitance"]; !ok {
		t.Errorf("best params missing capacitance: %v", best.Params)
	}
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g, _ := NewGridSearch([]string{"resistance"}, [][]float64{{10}})
	if _, err := g.Search(context.Background(), baseConfig(), "no_such_metric"); err == nil {
		t.Error("expected error for a metric no run reports")
	}
}

func TestGridSearchInvalidPoint(t *testing.T) {
	g, _ := NewGridSearch([]string{"inductance"}, [][]float64{{1e-3, -1}})
	_, err := g.Search(context.Background(), baseConfig(), "settling_time")
	if !errors.Is(err, experiment.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestNewGridSearchValidation(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ranges [][]float64
	}{
		{"length mismatch", []string{"resistance"}, nil},
		{"unknown parameter", []string{"frequency"}, [][]float64{{1}}},
		{"empty range", []string{"resistance"}, [][]float64{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGridSearch(tt.params, tt.ranges); err == nil {
				t.Error("expected error")
			}
		})
	}
}
