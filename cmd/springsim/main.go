package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/springnet/internal/analysis"
	"github.com/san-kum/springnet/internal/config"
	"github.com/san-kum/springnet/internal/dynamo"
	"github.com/san-kum/springnet/internal/experiment"
	"github.com/san-kum/springnet/internal/export"
	"github.com/san-kum/springnet/internal/sim"
	"github.com/san-kum/springnet/internal/storage"
	"github.com/san-kum/springnet/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	preset     string
	duration   float64
	steps      int
	gravity    float64
	integrator string
	workers    int
	elastic    string
	save       bool
	// plot / analyze
	massIdx      int
	plotCoord    string
	analyzeCoord string
	// converge
	sweepIntegrators []string
	sweepBase        int
	sweepLevels      int
	sweepJobs        int
	// export-svg
	svgOut    string
	svgWidth  int
	svgHeight int
	svgFrame  int
	braille   bool
	// init
	initPreset string
	force      bool
)

var logger = log.New(io.Discard, "springsim: ", log.Ltime|log.Lmicroseconds)

// main registers the springsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "springsim",
		Short:        "spring-mass network simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetOutput(os.Stderr)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "run a scenario file or preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a mass coordinate or the energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&massIdx, "mass", 0, "mass index")
	plotCmd.Flags().StringVar(&plotCoord, "coord", "y", "x, y or energy")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a mass coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&massIdx, "mass", 0, "mass index")
	analyzeCmd.Flags().StringVar(&analyzeCoord, "coord", "x", "x or y")

	convergeCmd := &cobra.Command{
		Use:   "converge [scenario.yaml]",
		Short: "energy drift against timestep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  converge,
	}
	addScenarioFlags(convergeCmd)
	convergeCmd.Flags().StringSliceVar(&sweepIntegrators, "integrators", []string{"euler", "symplectic"}, "integrators to compare")
	convergeCmd.Flags().IntVar(&sweepBase, "base", 0, "coarsest step count (default timesteps/8)")
	convergeCmd.Flags().IntVar(&sweepLevels, "levels", 5, "number of step-count doublings")
	convergeCmd.Flags().IntVar(&sweepJobs, "jobs", 0, "parallel runs (default GOMAXPROCS)")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render one frame through the braille canvas")
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "frame for --braille (default last)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a scenario template",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initScenario,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "triangle", "preset to start from")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, convergeCmd, replayCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "pendulum", "preset used when no scenario file is given")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultTime, "simulated time in seconds")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultTimesteps, "number of timesteps")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration magnitude")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, symplectic)")
	cmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "goroutines per integration stage")
	cmd.Flags().StringVar(&elastic, "elastic", config.DefaultElastic, "elastic energy form (quadratic, linear)")
}

// loadScenario reads the scenario file or preset, then applies the flags
// the user actually set on top of it.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var sc *config.Scenario
	if len(args) == 1 {
		var err error
		sc, err = config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		logger.Printf("loaded scenario %q from %s", sc.Name, args[0])
	} else {
		sc = config.GetPreset(preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		logger.Printf("using preset %q", preset)
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		sc.Time = duration
	}
	if flags.Changed("steps") {
		sc.Timesteps = steps
	}
	if flags.Changed("gravity") {
		sc.Gravity = gravity
	}
	if flags.Changed("integrator") {
		sc.Integrator = integrator
	}
	if flags.Changed("workers") {
		sc.Workers = workers
	}
	if flags.Changed("elastic") {
		sc.Elastic = elastic
	}
	if flags.Lookup("save") != nil && flags.Changed("save") {
		sc.Save = save
	}
	return sc, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(sc, experiment.NewRegistry())
	if err := exp.Setup(experiment.Options{RecordEnergy: true}); err != nil {
		return err
	}
	cfg := exp.GetSimulator().Config()
	logger.Printf("configured %d masses, %d springs, dt=%g, workers=%d",
		exp.GetSimulator().Network().NumMasses(), exp.GetSimulator().Network().NumSprings(), cfg.Dt(), cfg.Workers)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%s, %d steps)...\n", sc.Name, sc.Integrator, sc.Timesteps)
	start := time.Now()

	out, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Printf("completed in %v", elapsed)

	printSummary(out, elapsed)

	if sc.Save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(out)
		if err != nil {
			return err
		}
		logger.Printf("saved to %s", dataDir)
		fmt.Printf("\nrun id: %s\n", runID)
	}

	return nil
}

func printSummary(out *experiment.Outcome, elapsed time.Duration) {
	res := out.Result

	fmt.Println(viz.Title.Render(out.Scenario.Name))
	fmt.Println(viz.HeaderStyle.Render("summary"))
	fmt.Println(viz.Metric("elapsed", elapsed.Round(time.Microsecond).String()))
	fmt.Println(viz.Metric("steps", fmt.Sprintf("%d (dt=%g)", res.StepsTaken, out.Config.Dt())))
	fmt.Println(viz.Metric("E initial", fmt.Sprintf("%.6f", res.InitialEnergy)))
	fmt.Println(viz.Metric("E final", fmt.Sprintf("%.6f", res.FinalEnergy)))
	if res.DriftDefined {
		fmt.Println(viz.Metric("drift", fmt.Sprintf("%+.4f %%", res.Drift)))
	} else {
		fmt.Println(viz.Metric("drift", "undefined: "+res.DriftErr.Error()))
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println()
	for _, name := range names {
		fmt.Println(viz.Metric(name, fmt.Sprintf("%.6g", res.Metrics[name])))
	}

	if len(res.Trajectory) == 0 {
		return
	}
	last := res.Trajectory[len(res.Trajectory)-1]
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MASS\tX\tY")
	for i := range last.X {
		fmt.Fprintf(w, "m%d\t%.6f\t%.6f\n", i, last.X[i], last.Y[i])
	}
	w.Flush()
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tSTEPS\tDT\tINTEG\tDRIFT")

	for _, run := range runs {
		drift := "n/a"
		if run.DriftDefined {
			drift = fmt.Sprintf("%+.3f%%", run.Drift)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%.2es\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Steps,
			run.Dt,
			run.Integrator,
			drift,
		)
	}

	return w.Flush()
}

type loadedRun struct {
	meta   *storage.RunMetadata
	traj   sim.Trajectory
	times  []float64
	energy []float64
}

func loadRun(runID string) (*loadedRun, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, times, energy, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	if len(traj) == 0 {
		return nil, fmt.Errorf("no data in run %s", runID)
	}
	logger.Printf("loaded %s: %d snapshots", runID, len(traj))
	return &loadedRun{meta: meta, traj: traj, times: times, energy: energy}, nil
}

// series picks a coordinate of one mass, or the energy column.
func (r *loadedRun) series(mass int, coord string) ([]float64, string, error) {
	if coord == "energy" {
		if len(r.energy) == 0 {
			return nil, "", errors.New("run has no energy series")
		}
		return r.energy, "total energy", nil
	}
	if mass < 0 || mass >= r.traj.NumMasses() {
		return nil, "", fmt.Errorf("%w: mass m%d (run has %d)", dynamo.ErrInvalidParameter, mass, r.traj.NumMasses())
	}
	xs, ys := r.traj.Mass(mass)
	switch coord {
	case "x":
		return xs, fmt.Sprintf("m%d x", mass), nil
	case "y":
		return ys, fmt.Sprintf("m%d y", mass), nil
	default:
		return nil, "", fmt.Errorf("%w: coordinate %q", dynamo.ErrInvalidParameter, coord)
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data, caption, err := run.series(massIdx, plotCoord)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", run.meta.ID)
	fmt.Printf("scenario: %s\n", run.meta.Name)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption+" vs time"),
	)
	fmt.Println(graph)

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data, caption, err := run.series(massIdx, analyzeCoord)
	if err != nil {
		return err
	}

	sp, err := analysis.SpectrumOf(data, run.meta.Dt)
	if err != nil {
		return err
	}
	freq, err := analysis.DominantFrequency(data, run.meta.Dt)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", run.meta.ID)
	fmt.Printf("series: %s\n\n", caption)

	// show the low end of the spectrum, where spring networks live
	upto := len(sp.Power) / 64
	if upto < 16 {
		upto = len(sp.Power)
	}
	graph := asciigraph.Plot(sp.Power[:upto],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), 0 to %.2f hz", caption, sp.Freqs[upto-1])),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("dominant frequency: %.4f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4f s\n", 1.0/freq)
	}

	return nil
}

func converge(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	base := sweepBase
	if base <= 0 {
		base = sc.Timesteps / 8
		if base < 1 {
			base = 1
		}
	}
	stepCounts := experiment.Halvings(base, sweepLevels)

	jobs := sweepJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("convergence for %s over %.2fs (%d runs, %d at a time)\n\n",
		sc.Name, sc.Time, len(stepCounts)*len(sweepIntegrators), jobs)
	start := time.Now()

	points, err := experiment.Sweep(ctx, sc, sweepIntegrators, stepCounts, jobs)
	if err != nil {
		return err
	}
	logger.Printf("sweep finished in %v", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tDT\tDRIFT")
	for _, p := range points {
		drift := "n/a"
		if p.DriftDefined {
			drift = fmt.Sprintf("%+.4e%%", p.Drift)
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%s\n", p.Integrator, p.Steps, p.Dt, drift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for _, name := range sweepIntegrators {
		var own []experiment.SweepPoint
		for _, p := range points {
			if p.Integrator == name {
				own = append(own, p)
			}
		}
		verdict := viz.StatusRunning.Render("drift shrinks with dt")
		if !experiment.Monotone(own, 0) {
			verdict = viz.StatusFailed.Render("drift not monotone in dt")
		}
		fmt.Printf("%-12s %s\n", name, verdict)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewReplayModel(scene), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func loadScene(runID string) (*viz.Scene, error) {
	run, err := loadRun(runID)
	if err != nil {
		return nil, err
	}
	sc, err := storage.New(dataDir).LoadScenario(runID)
	if err != nil {
		return nil, err
	}
	net, err := sc.Build()
	if err != nil {
		return nil, err
	}
	return viz.NewScene(sc.Name, net, run.traj, run.times, run.energy)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, storage.NewExportData(run.meta, run.traj, run.times, run.energy))
}

func exportCSV(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteTrajectoryCSV(os.Stdout, run.traj, run.times, run.energy)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(args[0])
	if err != nil {
		return err
	}

	var svg string
	if braille {
		frame := svgFrame
		if frame < 0 || frame >= scene.Frames() {
			frame = scene.Frames() - 1
		}
		canvas := viz.NewCanvas(svgWidth/8, svgHeight/16)
		viz.DrawScene(canvas, scene, frame, scene.Bounds().Pad(0.1), 0)
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg = export.TrajectoryToSVG(scene, svgWidth, svgHeight)
	}

	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFIXTURES\tMASSES\tSPRINGS\tTIME\tSTEPS\tGRAVITY")
	for _, name := range config.ListPresets() {
		sc := config.MustPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1fs\t%d\t%.2f\n",
			name, len(sc.Fixtures), len(sc.Masses), len(sc.Springs), sc.Time, sc.Timesteps, sc.Gravity)
	}
	return w.Flush()
}

func initScenario(cmd *cobra.Command, args []string) error {
	path := "scenario.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	sc := config.GetPreset(initPreset)
	if sc == nil {
		return fmt.Errorf("unknown preset: %s (available: %s)", initPreset, strings.Join(config.ListPresets(), ", "))
	}
	sc.Name = "custom"

	if err := config.Save(path, sc); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
