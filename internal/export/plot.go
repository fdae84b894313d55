// Package export renders sweep results as static charts.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var ErrNoSeries = errors.New("export: no successful results to plot")

// SweepPlot draws one line per successful result against time in µs.
// Failed results are left out of the chart.
func SweepPlot(results []*experiment.Result, obs circuit.Observable) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s response", obs.Quantity)
	p.X.Label.Text = "Time (µs)"
	p.Y.Label.Text = obs.AxisLabel()
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	n := 0
	for _, r := range results {
		if r == nil || !r.OK() || len(r.Times) == 0 {
			continue
		}
		line, err := plotter.NewLine(points(r.TimesMicro(), r.Values))
		if err != nil {
			return nil, fmt.Errorf("resistance %g: %w", r.Resistance, err)
		}
		line.Color = plotutil.Color(n)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(obs.Legend(r.Resistance), line)
		n++
	}
	if n == 0 {
		return nil, ErrNoSeries
	}
	return p, nil
}

func points(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

// Save writes the chart to path; the extension picks the format
// (png, svg, pdf, eps, jpg, tif).
func Save(p *plot.Plot, path string, w, h vg.Length) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(p, f, FormatOf(path), w, h); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Write streams the chart in the named format.
func Write(p *plot.Plot, out io.Writer, format string, w, h vg.Length) error {
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	wt, err := p.WriterTo(w, h, strings.TrimPrefix(strings.ToLower(format), "."))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(out)
	return err
}

// FormatOf returns the image format implied by a file name.
func FormatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "png"
	}
	return ext
}
