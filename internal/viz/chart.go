package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

const (
	DefaultChartWidth  = 80
	DefaultChartHeight = 15
)

// Chart overlays the reported quantity of every successful result. It
// returns an empty string when nothing succeeded.
func Chart(results []*experiment.Result, obs circuit.Observable, width, height int) string {
	var (
		data    [][]float64
		colors  []asciigraph.AnsiColor
		legends []string
	)
	for _, r := range results {
		if r == nil || !r.OK() || len(r.Values) == 0 {
			continue
		}
		colors = append(colors, CurrentTheme.SeriesColor(len(data)))
		data = append(data, r.Values)
		legends = append(legends, obs.Legend(r.Resistance))
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption(results, obs)),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}

// SeriesChart plots a single result.
func SeriesChart(r *experiment.Result, width, height int) string {
	if r == nil || !r.OK() || len(r.Values) == 0 {
		return ""
	}
	return asciigraph.Plot(r.Values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(r.Observable.Legend(r.Resistance)+" "+span(r)),
		asciigraph.SeriesColors(CurrentTheme.SeriesColor(0)),
	)
}

func caption(results []*experiment.Result, obs circuit.Observable) string {
	for _, r := range results {
		if r != nil && r.OK() && len(r.Times) > 0 {
			return obs.AxisLabel() + " " + span(r)
		}
	}
	return obs.AxisLabel()
}

func span(r *experiment.Result) string {
	us := r.TimesMicro()
	return fmt.Sprintf("over 0 to %.4g µs", us[len(us)-1])
}
