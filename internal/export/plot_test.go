package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

func ringing(t *testing.T) ([]*experiment.Result, circuit.Observable) {
	t.Helper()
	src := 5.0
	cfg := experiment.Config{
		Topology:    circuit.Series,
		Excitation:  circuit.Step,
		Inductance:  1e-3,
		Capacitance: 1e-6,
		Resistances: []float64{10, 63.2},
		Source:      &src,
		TEnd:        1e-3,
		Samples:     100,
	}
	results, err := experiment.RunSweep(context.Background(), cfg)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	return results, circuit.ObservableFor(cfg.Topology, cfg.Excitation)
}

func TestSweepPlot(t *testing.T) {
	results, obs := ringing(t)
	p, err := SweepPlot(results, obs)
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	if p.X.Label.Text != "Time (µs)" || p.Y.Label.Text != "Voltage (V)" {
		t.Errorf("axis labels: %q, %q", p.X.Label.Text, p.Y.Label.Text)
	}
	if p.X.Max < 999 || p.X.Max > 1001 {
		t.Errorf("x range should end near 1000 µs, got %g", p.X.Max)
	}
}

func TestSweepPlotSkipsFailures(t *testing.T) {
	results, obs := ringing(t)
	for _, r := range results {
		r.Err = errors.New("failed")
	}
	if _, err := SweepPlot(results, obs); !errors.Is(err, ErrNoSeries) {
		t.Errorf("expected ErrNoSeries, got %v", err)
	}
}

func TestSaveAndWrite(t *testing.T) {
	results, obs := ringing(t)
	p, err := SweepPlot(results, obs)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "sweep.svg")
	if err := Save(p, path, 0, 0); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("expected svg output")
	}

	var buf bytes.Buffer
	if err := Write(p, &buf, "png", 0, 0); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected png signature")
	}

	if FormatOf("out.PDF") != "pdf" || FormatOf("out") != "png" {
		t.Error("FormatOf")
	}

	bad := filepath.Join(t.TempDir(), "sweep.xyz")
	if err := Save(p, bad, 0, 0); err == nil {
		t.Error("expected an error for an unknown image format")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed save left a file behind")
	}
}
