package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rlcsim/internal/analysis"
	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/config"
	"github.com/san-kum/rlcsim/internal/experiment"
	"github.com/san-kum/rlcsim/internal/export"
	"github.com/san-kum/rlcsim/internal/logging"
	"github.com/san-kum/rlcsim/internal/optim"
	"github.com/san-kum/rlcsim/internal/storage"
	"github.com/san-kum/rlcsim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	theme    string
	logger   = logging.NewNop()

	// run
	runFlags circuitFlags
	showPlot bool
	noSave   bool
	imageOut string

	classifyFlags circuitFlags
	viewFlags     circuitFlags
	tuneFlags     circuitFlags
	tuneGrid      []string
	tuneMetric    string

	// stored-run commands
	seriesIndex int
	outPath     string
	renderOut   string
	rerunSave   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rlcsim",
		Short:        "series and parallel RLC transient simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.New(level)
			viz.SetTheme(theme)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rlcsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "default", "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "classify and simulate a resistance sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "draw the sweep in the terminal")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVarP(&imageOut, "out", "o", "", "also render the sweep to an image (png, svg, pdf)")

	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "print the damping regime of each resistance without integrating",
		Args:  cobra.NoArgs,
		RunE:  classify,
	}
	classifyFlags.register(classifyCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run's settings and summary table",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	rerunCmd := &cobra.Command{
		Use:   "rerun [run_id]",
		Short: "repeat a stored sweep with its saved settings",
		Args:  cobra.ExactArgs(1),
		RunE:  rerunSweep,
	}
	rerunCmd.Flags().BoolVar(&rerunSave, "save", false, "store the repeated sweep as a new run")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run to an image file",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "sweep.png", "output file; extension selects png, svg or pdf")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait (i_L, v_C) of one resistance",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVarP(&seriesIndex, "index", "i", 0, "resistance index within the run")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and step-response analysis of one resistance",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVarP(&seriesIndex, "index", "i", 0, "resistance index within the run")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export one resistance's samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVarP(&seriesIndex, "index", "i", 0, "resistance index within the run")
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTOPOLOGY\tEXCITATION\tRESISTANCES\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, p.Config.Topology, p.Config.Excitation,
					config.FormatResistances(p.Config.Resistances), p.Description)
			}
			return w.Flush()
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a stored run, or a fresh sweep, in an interactive viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewSweep,
	}
	viewFlags.register(viewCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search circuit values minimising a run metric",
		Args:  cobra.NoArgs,
		RunE:  tune,
	}
	tuneFlags.register(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", []string{"resistance=10:200:20"}, "parameter grid, name=lo:hi:n or name=a,b,c (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "settling_time", "metric to minimise")

	rootCmd.AddCommand(runCmd, classifyCmd, listCmd, showCmd, rerunCmd, plotCmd, renderCmd, phaseCmd,
		analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd, viewCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func printRegimes(w io.Writer, results []*experiment.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "circuit is %s at resistance %g ohms\n", r.Regime, r.Resistance)
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := runFlags.build(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg.ToExperiment())
	exp.SetLogger(logger)

	logger.Info("running sweep",
		"topology", cfg.Topology.String(),
		"excitation", cfg.Excitation.String(),
		"resistances", len(cfg.Resistances))
	start := time.Now()

	results, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("sweep finished", "elapsed", time.Since(start))

	printRegimes(os.Stdout, results)
	fmt.Println()
	fmt.Println(viz.SummaryTable(results))

	obs := circuit.ObservableFor(cfg.Topology, cfg.Excitation)
	if showPlot {
		if chart := viz.Chart(results, obs, viz.DefaultChartWidth, viz.DefaultChartHeight); chart != "" {
			fmt.Println()
			fmt.Println(chart)
		}
	}

	if imageOut != "" {
		if err := render(results, obs, imageOut); err != nil {
			return err
		}
		fmt.Printf("chart written to %s\n", imageOut)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(runFlags.runName(cfg), exp.Config().WithDefaults(), results)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	return experiment.Failures(results)
}

func rerunSweep(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	cfg := meta.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("run %s: %w", meta.ID, err)
	}
	exp := experiment.New(cfg)
	exp.SetLogger(logger)

	logger.Info("repeating sweep", "run", meta.ID, "resistances", len(cfg.Resistances))
	results, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	printRegimes(os.Stdout, results)
	fmt.Println()
	fmt.Println(viz.SummaryTable(results))

	for i, res := range results {
		if i >= len(meta.Runs) || !res.OK() || !meta.Runs[i].OK() {
			continue
		}
		if res.Regime != meta.Runs[i].Regime {
			logger.Warn("regime changed", "resistance", res.Resistance,
				"stored", meta.Runs[i].Regime.String(), "now", res.Regime.String())
		}
	}

	if rerunSave {
		runID, err := st.Save(meta.Name, exp.Config().WithDefaults(), results)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return experiment.Failures(results)
}

func classify(cmd *cobra.Command, args []string) error {
	cfg, err := classifyFlags.build(cmd)
	if err != nil {
		return err
	}
	l, c := cfg.Inductance, cfg.Capacitance

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range cfg.Resistances {
		regime := circuit.ClassifyTol(cfg.Topology, r, l, c, cfg.CriticalTol)
		fmt.Fprintf(w, "circuit is %s at resistance %g ohms\tα=%.4g 1/s\tω_d=%.4g rad/s\tstiffness=%.3g\n",
			regime, r,
			circuit.Alpha(cfg.Topology, r, l, c),
			circuit.DampedFrequency(cfg.Topology, r, l, c),
			circuit.StiffnessRatio(cfg.Topology, r, l, c))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nω₀ = %.6g rad/s, critical resistance = %.6g ohms\n",
		circuit.ResonantFrequency(l, c), circuit.CriticalResistance(cfg.Topology, l, c))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTOPOLOGY\tEXCITATION\tRESISTANCES\tT_END\tINTEG")

	for _, run := range runs {
		rs := make([]float64, len(run.Runs))
		for i, e := range run.Runs {
			rs[i] = e.Resistance
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%gs\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Topology,
			run.Excitation,
			config.FormatResistances(rs),
			run.TEnd,
			run.Integrator,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("circuit: %s, %s response, L=%g H, C=%g F\n", meta.Topology, meta.Excitation, meta.Inductance, meta.Capacitance)
	if meta.Source != nil && meta.Excitation == circuit.Step {
		fmt.Printf("source: %g %s\n", *meta.Source, meta.Topology.SourceUnit())
	}
	fmt.Printf("initial: i_L=%g A, v_C=%g V\n", meta.Init.IL, meta.Init.VC)
	fmt.Printf("span: %g s, %d samples, integrator %s\n\n", meta.TEnd, meta.Samples, meta.Integrator)

	printRegimes(os.Stdout, results)
	fmt.Println()
	fmt.Println(viz.SummaryTable(results))

	for i, r := range results {
		if !r.OK() {
			fmt.Printf("[%d] R=%g: %v\n", i, r.Resistance, r.Err)
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	obs := circuit.ObservableFor(meta.Topology, meta.Excitation)
	chart := viz.Chart(results, obs, viz.DefaultChartWidth, viz.DefaultChartHeight)
	if chart == "" {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", meta.Samples)
	fmt.Println(chart)
	return nil
}

func render(results []*experiment.Result, obs circuit.Observable, path string) error {
	p, err := export.SweepPlot(results, obs)
	if err != nil {
		return err
	}
	return export.Save(p, path, 0, 0)
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	if err := render(results, circuit.ObservableFor(meta.Topology, meta.Excitation), renderOut); err != nil {
		return err
	}
	fmt.Printf("chart written to %s\n", renderOut)
	return nil
}

func selectResult(results []*experiment.Result, idx int) (*experiment.Result, error) {
	if idx < 0 || idx >= len(results) {
		return nil, fmt.Errorf("index %d out of range [0, %d)", idx, len(results))
	}
	r := results[idx]
	if !r.OK() {
		return nil, fmt.Errorf("resistance %g has no samples: %v", r.Resistance, r.Err)
	}
	return r, nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}
	r, err := selectResult(results, seriesIndex)
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(meta.Topology, r.States)
	fmt.Printf("phase portrait: %s, R=%g ohms (%s)\n", meta.ID, r.Resistance, r.Regime)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", portrait.XLabel, portrait.YLabel)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, results, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}
	r, err := selectResult(results, seriesIndex)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("R=%g ohms, %s, %s\n\n", r.Resistance, r.Regime, r.Observable.AxisLabel())

	ps := analysis.PowerSpectrum(r.Values)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+r.Observable.Symbol+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	sum := analysis.Summarize(r.Times, r.Values)
	expected := r.DampedFrequency / (2 * math.Pi)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "dominant frequency\t%.6g Hz\n", sum.Frequency)
	fmt.Fprintf(w, "ω_d/2π\t%.6g Hz\n", expected)
	if sum.Frequency > 0 && expected > 0 {
		fmt.Fprintf(w, "relative difference\t%.3g\n", math.Abs(sum.Frequency-expected)/expected)
	}
	if meta.Excitation == circuit.Step {
		fmt.Fprintf(w, "overshoot\t%.3g %%\n", sum.Overshoot)
	}
	fmt.Fprintf(w, "peak time\t%.6g µs\n", sum.PeakTime*circuit.TimeScale)
	fmt.Fprintf(w, "settling time (2%%)\t%.6g µs\n", sum.Settling*circuit.TimeScale)
	return w.Flush()
}

func openOut(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	return storage.New(dataDir).ExportJSON(out, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	path, err := storage.New(dataDir).SeriesPath(args[0], seriesIndex)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func viewSweep(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		meta, results, err := storage.New(dataDir).LoadResults(args[0])
		if err != nil {
			return err
		}
		return viz.RunSweepView(meta.Topology, circuit.ObservableFor(meta.Topology, meta.Excitation), results)
	}

	cfg, err := viewFlags.build(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg.ToExperiment())
	exp.SetLogger(logger)
	results, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	return viz.RunSweepView(cfg.Topology, circuit.ObservableFor(cfg.Topology, cfg.Excitation), results)
}

func tune(cmd *cobra.Command, args []string) error {
	cfg, err := tuneFlags.build(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneGrid))
	ranges := make([][]float64, 0, len(tuneGrid))
	for _, g := range tuneGrid {
		name, vals, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	logger.Info("grid search", "params", names, "metric", tuneMetric)
	best, err := gs.Search(cmd.Context(), cfg.ToExperiment(), tuneMetric)
	if err != nil {
		return err
	}
	if best.Failed > 0 {
		logger.Warn("grid points failed to integrate", "failed", best.Failed, "evaluated", best.Evaluated)
	}

	fmt.Printf("evaluated %d points (%d failed)\n", best.Evaluated, best.Failed)
	fmt.Printf("best %s: %.6g\n", tuneMetric, best.Value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	if best.Result != nil {
		fmt.Printf("circuit is %s at resistance %g ohms\n", best.Result.Regime, best.Result.Resistance)
	}
	return nil
}
