package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rlcsim/internal/experiment"
)

// Params are the circuit values a search can vary.
var Params = []string{"resistance", "inductance", "capacitance"}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, p := range params {
		if !knownParam(p) {
			return nil, fmt.Errorf("unknown parameter %q (want one of %v)", p, Params)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %q has no values", p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Best is the winning grid point.
type Best struct {
	Params    map[string]float64
	Value     float64
	Result    *experiment.Result
	Evaluated int
	Failed    int
}

// Search solves base at every grid point and returns the one with the
// smallest value of metricName. A point that fails to integrate is skipped.
func (g *GridSearch) Search(ctx context.Context, base experiment.Config, metricName string) (*Best, error) {
	best := &Best{Value: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, best); err != nil {
		return nil, err
	}
	if best.Params == nil {
		return best, fmt.Errorf("no grid point produced metric %q", metricName)
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base experiment.Config,
	metricName string,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg, r := apply(base, current)
		result, err := experiment.Solve(ctx, cfg, r)
		best.Evaluated++
		switch {
		case errors.Is(err, experiment.ErrNumerical):
			best.Failed++
			return nil
		case err != nil:
			return err
		}

		val, ok := result.Metrics[metricName]
		if ok && val < best.Value {
			best.Value = val
			best.Result = result
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best); err != nil {
			return err
		}
	}
	return nil
}

// apply returns base with the grid values set, and the resistance to solve.
func apply(base experiment.Config, params map[string]float64) (experiment.Config, float64) {
	cfg := base
	r := 0.0
	if len(base.Resistances) > 0 {
		r = base.Resistances[0]
	}
	for name, v := range params {
		switch name {
		case "resistance":
			r = v
		case "inductance":
			cfg.Inductance = v
		case "capacitance":
			cfg.Capacitance = v
		}
	}
	return cfg, r
}

func knownParam(name string) bool {
	for _, p := range Params {
		if p == name {
			return true
		}
	}
	return false
}
