package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	num        []float64
	den        []float64
	integrator string
	costName   string
	seed       int64
	workers    int
	logLevel   string
	logJSON    bool
	useTUI     bool
	plot       bool

	// zn / step
	ku       float64
	nichols  bool
	kp       float64
	ki       float64
	kd       float64
	openLoop bool

	points   int
	jsonOut  bool
	plotPath string
)

// main registers the pidtune commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "pidtune",
		Short:        "PID gain search with genetic and particle swarm optimizers",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".pidtune", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "plant preset (see 'pidtune presets')")
	pf.Float64SliceVar(&num, "num", nil, "plant numerator, highest power first")
	pf.Float64SliceVar(&den, "den", nil, "plant denominator, highest power first")
	pf.StringVar(&integrator, "integrator", "rk4", "integrator: euler, rk4, rk45")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")

	gaCmd := &cobra.Command{
		Use:   "ga",
		Short: "tune with the binary genetic algorithm",
		Args:  cobra.NoArgs,
		RunE:  runGA,
	}
	psoCmd := &cobra.Command{
		Use:   "pso",
		Short: "tune with particle swarm optimization",
		Args:  cobra.NoArgs,
		RunE:  runPSO,
	}
	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "exhaustive search over an even gain grid",
		Args:  cobra.NoArgs,
		RunE:  runGrid,
	}
	gridCmd.Flags().IntVar(&points, "points", 6, "grid points per gain")

	for _, c := range []*cobra.Command{gaCmd, psoCmd, gridCmd} {
		c.Flags().StringVar(&costName, "cost", "composite", "objective: composite, mse, ise, iae, itse, itae, lqr")
		c.Flags().IntVar(&workers, "workers", 0, "parallel evaluations (0 = GOMAXPROCS)")
		c.Flags().BoolVar(&plot, "plot", false, "write PNG plots into the run directory")
	}
	for _, c := range []*cobra.Command{gaCmd, psoCmd} {
		c.Flags().Int64Var(&seed, "seed", 1, "random seed")
		c.Flags().BoolVar(&useTUI, "tui", false, "show live progress")
	}

	znCmd := &cobra.Command{
		Use:   "zn",
		Short: "Ziegler-Nichols baseline gains",
		Args:  cobra.NoArgs,
		RunE:  runZN,
	}
	znCmd.Flags().Float64Var(&ku, "ku", 0, "ultimate gain (required unless --nichols)")
	znCmd.Flags().BoolVar(&nichols, "nichols", false, "estimate Ku and Tu from the open-loop step response")

	stepCmd := &cobra.Command{
		Use:   "step",
		Short: "simulate the closed-loop step response for given gains",
		Args:  cobra.NoArgs,
		RunE:  runStep,
	}
	stepCmd.Flags().Float64Var(&kp, "kp", 1, "proportional gain")
	stepCmd.Flags().Float64Var(&ki, "ki", 0, "integral gain")
	stepCmd.Flags().Float64Var(&kd, "kd", 0, "derivative gain")
	stepCmd.Flags().BoolVar(&openLoop, "open", false, "simulate the plant alone")
	stepCmd.Flags().StringVar(&plotPath, "plot", "", "write the response to a PNG file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run and its fitness history",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run and history as JSON")
	showCmd.Flags().BoolVar(&plot, "plot", false, "write evolution PNGs into the run directory")

	compareCmd := &cobra.Command{
		Use:   "compare [run_id] [run_id] ...",
		Short: "compare closed-loop step responses of stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareRuns,
	}
	compareCmd.Flags().StringVar(&plotPath, "plot", "", "write the overlaid responses to a PNG file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list plant presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(gaCmd, psoCmd, gridCmd, znCmd, stepCmd, listCmd, showCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
