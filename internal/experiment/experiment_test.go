package experiment_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/dynamo"
	"github.com/san-kum/rlcsim/internal/experiment"
	"github.com/san-kum/rlcsim/internal/logging"
)

func volts(v float64) *float64 { return &v }

func seriesStep() experiment.Config {
	return experiment.Config{
		Topology:    circuit.Series,
		Excitation:  circuit.Step,
		Inductance:  1e-3,
		Capacitance: 1e-6,
		Resistances: []float64{63.2},
		Source:      volts(5),
		TEnd:        1e-3,
	}
}

func seriesNatural(rs ...float64) experiment.Config {
	return experiment.Config{
		Topology:    circuit.Series,
		Excitation:  circuit.Natural,
		Inductance:  1e-3,
		Capacitance: 1e-6,
		Resistances: rs,
		Init:        circuit.InitialState{IL: 0.01, VC: 1},
		TEnd:        1e-3,
	}
}

var _ = Describe("RunSweep", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("series step response near critical damping", func() {
		var result *experiment.Result

		BeforeEach(func() {
			results, err := experiment.RunSweep(ctx, seriesStep())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			result = results[0]
		})

		It("classifies the circuit as underdamped", func() {
			Expect(result.Regime).To(Equal(circuit.Underdamped))
			Expect(result.Alpha).To(BeNumerically("~", 31600, 1e-6))
			Expect(result.Omega).To(BeNumerically("~", 31622.78, 0.01))
			Expect(result.DampedFrequency).To(BeNumerically(">", 0))
		})

		It("samples 1000 points covering the horizon", func() {
			Expect(result.Times).To(HaveLen(1000))
			Expect(result.Times[0]).To(Equal(0.0))
			Expect(result.Times[999]).To(Equal(1e-3))
			Expect(result.TimesMicro()[999]).To(BeNumerically("~", 1000, 1e-9))
		})

		It("settles with the capacitor at the source voltage", func() {
			last := result.States[len(result.States)-1]
			Expect(last[1]).To(BeNumerically("~", 5, 1e-2))
			Expect(math.Abs(last[0])).To(BeNumerically("<", 1e-3))
			Expect(result.Values[len(result.Values)-1]).To(BeNumerically("~", 5, 1e-2))
			Expect(result.Observable.Symbol).To(Equal("v"))
		})

		It("uses the explicit stepper and reports metrics", func() {
			Expect(result.Integrator).To(Equal("rk45"))
			Expect(result.Metrics).To(HaveKey("stored_energy"))
			Expect(result.Metrics).To(HaveKey("energy_growth"))
			Expect(result.Metrics).To(HaveKey("settling_time"))
			Expect(result.Metrics["source_energy"]).To(BeNumerically(">", 0))
			Expect(result.OK()).To(BeTrue())
		})
	})

	Context("parallel natural response at critical damping", func() {
		It("is critically damped and follows v(t) = -t·e^(-t)", func() {
			cfg := experiment.Config{
				Topology:    circuit.Parallel,
				Excitation:  circuit.Natural,
				Inductance:  1,
				Capacitance: 1,
				Resistances: []float64{0.5},
				Init:        circuit.InitialState{IL: 1, VC: 0},
				TEnd:        10,
				Samples:     1001,
				RelTol:      1e-6,
				AbsTol:      1e-9,
			}

			results, err := experiment.RunSweep(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			r := results[0]

			Expect(r.Regime).To(Equal(circuit.CriticallyDamped))
			Expect(r.Observable.Symbol).To(Equal("v"))
			for _, i := range []int{0, 100, 250, 1000} {
				ts := r.Times[i]
				Expect(r.Values[i]).To(BeNumerically("~", -ts*math.Exp(-ts), 1e-4))
			}
		})
	})

	It("keeps a circuit at rest when nothing drives it", func() {
		for _, top := range []circuit.Topology{circuit.Series, circuit.Parallel} {
			cfg := seriesNatural(10, 1e3)
			cfg.Topology = top
			cfg.Init = circuit.InitialState{}

			results, err := experiment.RunSweep(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())
			for _, r := range results {
				for _, x := range r.States {
					Expect(x).To(Equal(dynamo.State{0, 0}))
				}
			}
		}
	})

	It("never gains energy in natural response", func() {
		cfg := seriesNatural(1, 10, 63.2, 500)
		cfg.RelTol, cfg.AbsTol = 1e-6, 1e-9

		results, err := experiment.RunSweep(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
			Expect(r.Metrics["energy_growth"]).To(BeNumerically("<=", 1+1e-4), "R=%g", r.Resistance)
		}
	})

	DescribeTable("preserves the input order of resistances",
		func(workers int) {
			cfg := seriesNatural(50, 10, 200)
			cfg.Workers = workers

			results, err := experiment.RunSweep(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			rs := make([]float64, len(results))
			for i, r := range results {
				rs[i] = r.Resistance
			}
			Expect(rs).To(Equal([]float64{50, 10, 200}))
		},
		Entry("sequentially", 1),
		Entry("on a worker pool", 3),
	)

	It("returns an empty result list for an empty sweep", func() {
		results, err := experiment.RunSweep(ctx, seriesNatural())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).NotTo(BeNil())
		Expect(results).To(BeEmpty())
	})

	Describe("input validation", func() {
		It("names the non-positive resistance and integrates nothing", func() {
			results, err := experiment.RunSweep(ctx, seriesNatural(10, 0, 20))
			Expect(results).To(BeNil())
			Expect(errors.Is(err, experiment.ErrInvalidInput)).To(BeTrue())

			var inputErr *experiment.InputError
			Expect(errors.As(err, &inputErr)).To(BeTrue())
			Expect(inputErr.Field).To(Equal("resistances[1]"))
			Expect(inputErr.Value).To(Equal(0.0))
		})

		It("requires a source magnitude for step excitation", func() {
			cfg := seriesStep()
			cfg.Source = nil

			_, err := experiment.RunSweep(ctx, cfg)
			var inputErr *experiment.InputError
			Expect(errors.As(err, &inputErr)).To(BeTrue())
			Expect(inputErr.Field).To(Equal("source"))
		})

		It("reports every invalid field together", func() {
			cfg := seriesStep()
			cfg.Inductance = 0
			cfg.Capacitance = -1
			cfg.TEnd = 0

			_, err := experiment.RunSweep(ctx, cfg)
			Expect(err).To(MatchError(ContainSubstring("inductance")))
			Expect(err).To(MatchError(ContainSubstring("capacitance")))
			Expect(err).To(MatchError(ContainSubstring("t_end")))
		})
	})

	Describe("stiff circuits", func() {
		It("records a numerical failure without aborting the sweep", func() {
			cfg := seriesNatural(10, 1e6)
			cfg.Integrator = "rk45"
			cfg.MaxSteps = 20000

			var buf bytes.Buffer
			exp := experiment.New(cfg)
			exp.SetLogger(logging.NewWriter(&buf, slog.LevelDebug))

			results, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			Expect(results[0].OK()).To(BeTrue())
			Expect(results[0].Values).To(HaveLen(1000))

			failed := results[1]
			Expect(failed.OK()).To(BeFalse())
			Expect(errors.Is(failed.Err, experiment.ErrNumerical)).To(BeTrue())
			Expect(errors.Is(failed.Err, dynamo.ErrTooManySteps)).To(BeTrue())
			Expect(failed.Regime).To(Equal(circuit.Overdamped))
			Expect(failed.Values).To(BeEmpty())

			var numErr *experiment.NumericalError
			Expect(errors.As(failed.Err, &numErr)).To(BeTrue())
			Expect(numErr.Resistance).To(Equal(1e6))

			Expect(experiment.Failures(results)).To(MatchError(ContainSubstring("1e+06")))
			Expect(buf.String()).To(ContainSubstring("integration failed"))
			Expect(buf.String()).To(ContainSubstring("err="))
		})

		It("switches to the implicit stepper automatically", func() {
			results, err := experiment.RunSweep(ctx, seriesNatural(10, 1e6))
			Expect(err).NotTo(HaveOccurred())

			Expect(results[0].Integrator).To(Equal("rk45"))
			Expect(results[1].Integrator).To(Equal("rosenbrock"))
			for _, r := range results {
				Expect(r.OK()).To(BeTrue(), "R=%g: %v", r.Resistance, r.Err)
				Expect(dynamo.State(r.Values).IsValid()).To(BeTrue())
			}

			last := results[1].States[len(results[1].States)-1]
			Expect(last[1]).To(BeNumerically("~", math.Exp(-1e-3), 1e-3))
		})
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := experiment.RunSweep(cctx, seriesNatural(10, 20))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})

var _ = Describe("Solve", func() {
	It("rejects a non-positive resistance", func() {
		_, err := experiment.Solve(context.Background(), seriesStep(), -5)
		var inputErr *experiment.InputError
		Expect(errors.As(err, &inputErr)).To(BeTrue())
		Expect(inputErr.Field).To(Equal("resistance"))
	})

	It("honours the classification tolerance", func() {
		cfg := seriesStep()
		cfg.CriticalTol = 1e-2

		r, err := experiment.Solve(context.Background(), cfg, 63.2)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Regime).To(Equal(circuit.CriticallyDamped))
	})

	It("reports the parallel step current in milliamps", func() {
		cfg := experiment.Config{
			Topology:    circuit.Parallel,
			Excitation:  circuit.Step,
			Inductance:  1e-3,
			Capacitance: 1e-6,
			Source:      volts(0.002),
			TEnd:        5e-3,
		}

		r, err := experiment.Solve(context.Background(), cfg, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Observable.Unit).To(Equal("mA"))
		Expect(r.Values[len(r.Values)-1]).To(BeNumerically("~", 2, 0.02))
	})
})
