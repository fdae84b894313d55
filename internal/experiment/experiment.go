package experiment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/san-kum/rlcsim/internal/logging"
	"github.com/san-kum/rlcsim/internal/sim"
)

// Experiment runs one sweep: every resistance value through the classifier
// and the solver, in input order.
type Experiment struct {
	cfg      Config
	registry *Registry
	logger   *slog.Logger
}

func New(cfg Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logging.NewNop(),
	}
}

func (e *Experiment) SetLogger(l *slog.Logger) {
	if l == nil {
		l = logging.NewNop()
	}
	e.logger = l
}

func (e *Experiment) Config() Config { return e.cfg }

// Run validates the whole configuration before integrating anything. Once
// it starts, a numerical failure is recorded on that value's Result and the
// remaining values still run. The returned error is non-nil only for
// invalid input or a cancelled context.
func (e *Experiment) Run(ctx context.Context) ([]*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	cfg := e.cfg.WithDefaults()
	results := make([]*Result, len(cfg.Resistances))

	runOne := func(ctx context.Context, i int) error {
		res := cfg.Resistances[i]
		r, err := solve(ctx, e.registry, cfg, res)
		if err != nil && !errors.Is(err, ErrNumerical) {
			return err
		}
		results[i] = r

		if r.Err != nil {
			e.logger.Warn("integration failed",
				"resistance", res, "integrator", r.Integrator, "error", r.Err)
			return nil
		}
		e.logger.Debug("solved",
			"resistance", res,
			"regime", r.Regime.String(),
			"integrator", r.Integrator,
			"steps", r.StepsTaken,
			"rejected", r.Rejected)
		return nil
	}

	if cfg.Workers > 1 {
		if err := sim.ParallelFor(ctx, len(results), cfg.Workers, runOne); err != nil {
			return nil, err
		}
		return results, nil
	}

	for i := range results {
		if err := runOne(ctx, i); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// RunSweep is New(cfg).Run(ctx).
func RunSweep(ctx context.Context, cfg Config) ([]*Result, error) {
	return New(cfg).Run(ctx)
}

// Failures joins the numerical errors recorded on results.
func Failures(results []*Result) error {
	var errs []error
	for _, r := range results {
		if r != nil && r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
