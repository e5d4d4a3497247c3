package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/swervesim/internal/config"
	"github.com/san-kum/swervesim/internal/geometry"
	"github.com/san-kum/swervesim/internal/kinematics"
	"github.com/san-kum/swervesim/internal/logging"
	"github.com/san-kum/swervesim/internal/metrics"
	"github.com/san-kum/swervesim/internal/optim"
	"github.com/san-kum/swervesim/internal/sim"
	"github.com/san-kum/swervesim/internal/storage"
	"github.com/san-kum/swervesim/internal/telemetry"
	"github.com/san-kum/swervesim/internal/viz"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string

	moduleName   string
	duration     float64
	integrator   string
	initialAngle float64
	failConfig   bool
	realtime     bool
	noSave       bool

	exportFormat string
	addr         string
	tuneParams   []string
	tuneMetric   string

	cfg    *config.Config
	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "swervesim",
		Short:             "swerve module controller and simulation bench",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".swervesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "robot preset applied over the config")

	runCmd := &cobra.Command{
		Use:   "run [scenario|file.yaml]",
		Short: "run a scenario against a simulated module",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks against the wall clock")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot setpoint and measured speed and heading",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format (csv, json, svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list robot presets",
		RunE:  listPresets,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize <speed> <desired_deg> <current_deg>",
		Short: "show the optimized module state",
		Args:  cobra.ExactArgs(3),
		RunE:  optimizeState,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "simulate every module and serve live telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4)")

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid-search controller constants against a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", []string{"turn_kp=1,2,4,8"}, "param=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "heading_error", "metric to optimize; settled is maximized, the rest minimized")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective config as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, presetsCmd, scenariosCmd,
		optimizeCmd, liveCmd, serveCmd, tuneCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&moduleName, "module", "", "module name (default: first module)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds (default: from config)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, rk4)")
	cmd.Flags().Float64Var(&initialAngle, "initial-angle", 0, "steering angle at power-on, degrees")
	cmd.Flags().BoolVar(&failConfig, "fail-config", false, "simulate a turning encoder that never accepts its config")
}

// setup loads the config and builds the logger shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadWithEnv(configFile)
	if err != nil {
		return err
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if integrator != "" {
		cfg.Sim.Integrator = integrator
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(os.Stderr, cfg.LogLevel)
	return err
}

// lookupScenario resolves a built-in scenario name or a yaml file path.
func lookupScenario(name string) (sim.Scenario, error) {
	if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
		return sim.LoadScenario(name)
	}
	sc, ok := sim.GetScenario(name)
	if !ok {
		return sim.Scenario{}, fmt.Errorf("unknown scenario: %s (see 'swervesim scenarios')", name)
	}
	return sc, nil
}

func newRig(module string) (*sim.Rig, error) {
	return sim.NewRig(cfg, sim.RigOptions{
		Module:       module,
		FailConfig:   failConfig,
		InitialAngle: initialAngle * math.Pi / 180,
		Logger:       logger,
	})
}

func simDuration() float64 {
	if duration > 0 {
		return duration
	}
	return cfg.Sim.Duration
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := lookupScenario(args[0])
	if err != nil {
		return err
	}

	rig, err := newRig(moduleName)
	if err != nil {
		return err
	}
	s := rig.Simulator()
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	simCfg := sim.Config{Period: rig.Period, Duration: simDuration(), Realtime: realtime}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s on module %d...\n", sc.Name, rig.Module.ID())
	start := time.Now()

	result, err := s.Run(ctx, sc, simCfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		logger.Warn("simulation error", "err", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Module:     moduleLabel(moduleName),
			Robot:      cfg.Robot,
			Period:     simCfg.Period,
			Duration:   simCfg.Duration,
			Integrator: cfg.Sim.Integrator,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if len(result.Frames) > 0 {
		last := result.Frames[len(result.Frames)-1]
		fmt.Printf("final: %s (setpoint %s)\n", last.Measured, last.Optimized)
	}

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, result.Metrics[name])
	}
	return w.Flush()
}

func moduleLabel(name string) string {
	if name != "" {
		return name
	}
	return cfg.Modules[0].Name
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
	fmt.Fprintln(w, "ID\tSCENARIO\tMODULE\tROBOT\tTIME\tDURATION\tPERIOD\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%.3fs\t%s\n",
			run.ID,
			run.Scenario,
			run.Module,
			run.Robot,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Period,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(frames))

	n := len(frames)
	setSpeed, gotSpeed := make([]float64, n), make([]float64, n)
	setAngle, gotAngle := make([]float64, n), make([]float64, n)
	driveV, turnV := make([]float64, n), make([]float64, n)
	for i, f := range frames {
		setSpeed[i], gotSpeed[i] = f.Optimized.Speed, f.Measured.Speed
		setAngle[i], gotAngle[i] = f.Optimized.Angle.Degrees(), f.Measured.Angle.Degrees()
		driveV[i], turnV[i] = f.DriveVolts, f.TurnVolts
	}

	plots := []struct {
		caption string
		series  [][]float64
	}{
		{"speed m/s (setpoint, measured)", [][]float64{setSpeed, gotSpeed}},
		{"heading deg (setpoint, measured)", [][]float64{setAngle, gotAngle}},
		{"volts (drive, turn)", [][]float64{driveV, turnV}},
	}
	for _, p := range plots {
		graph := asciigraph.PlotMany(p.series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	switch exportFormat {
	case "csv":
		return st.ExportCSV(args[0], os.Stdout)
	case "json":
		return st.ExportJSON(args[0], os.Stdout)
	case "svg":
		return st.ExportSVG(args[0], os.Stdout)
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tWHEEL_R\tGEAR\tDRIVE_KV\tTURN_KP")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.4f\t%.2f\t%.2f\t%.2f\n",
			name, p.Consts.WheelRadius, p.Consts.DriveGearRatio, p.Consts.DriveKv, p.Consts.TurnKp)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tCOMMANDS")
	for _, name := range sim.ListScenarios() {
		sc := sim.Scenarios[name]
		fmt.Fprintf(w, "%s\t", name)
		for i, c := range sc.Commands {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			if c.Action == sim.ActionTrack {
				fmt.Fprintf(w, "%.1fs %.2fm/s@%.0f°", c.At, c.State.Speed, c.State.Angle.Degrees())
			} else {
				fmt.Fprintf(w, "%.1fs %s", c.At, c.Action)
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func optimizeState(cmd *cobra.Command, args []string) error {
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i+1, err)
		}
		vals[i] = v
	}

	desired := kinematics.NewModuleState(vals[0], geometry.FromDegrees(vals[1]))
	current := geometry.FromDegrees(vals[2])
	opt := kinematics.Optimize(desired, current)

	fmt.Printf("desired:   %s\n", desired)
	fmt.Printf("current:   %s\n", current)
	fmt.Printf("optimized: %s\n", opt)
	fmt.Printf("steer:     %.2f°\n", opt.Angle.Minus(current).Degrees())
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	sc, err := lookupScenario(args[0])
	if err != nil {
		return err
	}

	// the live view owns the terminal
	logger.SetOutput(io.Discard)

	rig, err := newRig(moduleName)
	if err != nil {
		return err
	}
	s := rig.Simulator()
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}

	m := viz.NewModel(s, sc, rig.Period, cfg.Sim.NominalVoltage, moduleLabel(moduleName))
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func serve(cmd *cobra.Command, args []string) error {
	sc, err := lookupScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := telemetry.NewHub(logger)

	var wg sync.WaitGroup
	for _, mc := range cfg.Modules {
		rig, err := newRig(mc.Name)
		if err != nil {
			return err
		}
		s := rig.Simulator()
		s.AddObserver(hub.Feed(mc.Name))

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			simCfg := sim.Config{Period: rig.Period, Duration: cfg.Sim.Duration, Realtime: true}
			for ctx.Err() == nil {
				if _, err := s.Run(ctx, sc, simCfg); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("simulation stopped", "module", name, "err", err)
					return
				}
			}
		}(mc.Name)
	}

	srv := &http.Server{Addr: addr, Handler: hub.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving telemetry", "addr", addr, "scenario", sc.Name, "modules", len(cfg.Modules))
	err = srv.ListenAndServe()
	stop()
	wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func tuneGains(cmd *cobra.Command, args []string) error {
	sc, err := lookupScenario(args[0])
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}

	base := *cfg
	eval := func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		trial := base
		for name, v := range params {
			if err := trial.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		if err := trial.Validate(); err != nil {
			return nil, err
		}
		rig, err := sim.NewRig(&trial, sim.RigOptions{Module: moduleName, InitialAngle: initialAngle * math.Pi / 180})
		if err != nil {
			return nil, err
		}
		s := rig.Simulator()
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		res, err := s.Run(ctx, sc, sim.Config{Period: rig.Period, Duration: simDuration()})
		if err != nil {
			return nil, err
		}
		if len(res.Errors) > 0 {
			return nil, res.Errors[0]
		}
		return res.Metrics, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gs := optim.NewGridSearch(names, ranges)
	if metrics.HigherIsBetter(tuneMetric) {
		gs.Goal = optim.Maximize
	}
	best, score, trials, err := gs.Search(ctx, eval, tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(name))
	}
	fmt.Fprintln(w, strings.ToUpper(tuneMetric))
	for _, tr := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%.4g\t", tr.Params[name])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "error: %v\n", tr.Err)
		} else {
			fmt.Fprintf(w, "%.6f\n", tr.Score)
		}
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s (%s) = %.6f with", tuneMetric, gs.Goal, score)
	for _, name := range names {
		fmt.Printf(" %s=%.4g", name, best[name])
	}
	fmt.Println()
	return nil
}

// parseGrid parses name=v1,v2,... flags into search ranges.
func parseGrid(args []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", arg)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
