package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidtune/internal/config"
	"github.com/san-kum/pidtune/internal/report"
	"github.com/san-kum/pidtune/internal/sim"
	"github.com/san-kum/pidtune/internal/storage"
)

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
	fmt.Fprintln(w, "ID\tALGO\tPLANT\tCOST\tKP\tKI\tKD\tFITNESS\tGENS\tTIME")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%.4g\t%d\t%s\n",
			run.ID,
			run.Algorithm,
			run.Plant,
			run.Cost,
			run.Gains[0],
			run.Gains[1],
			run.Gains[2],
			run.BestFitness,
			run.Generations,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, *meta, history)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("algorithm: %s\n", meta.Algorithm)
	fmt.Printf("plant: %s num=%v den=%v\n", meta.Plant, meta.Num, meta.Den)
	fmt.Printf("cost: %s\n", meta.Cost)
	fmt.Printf("gains: Kp=%.6f Ki=%.6f Kd=%.6f\n", meta.Gains[0], meta.Gains[1], meta.Gains[2])
	fmt.Printf("fitness: %.6g (converged: %v)\n", meta.BestFitness, meta.Converged)
	fmt.Printf("generations: %d, evaluations: %d, %dms\n", meta.Generations, meta.Evaluations, meta.DurationMS)

	if len(meta.Metrics) > 0 {
		keys := make([]string, 0, len(meta.Metrics))
		for k := range meta.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println()
		for _, k := range keys {
			fmt.Printf("  %-14s %.4f\n", k, meta.Metrics[k])
		}
	}

	if len(history) > 1 {
		kpSeries := make([]float64, len(history))
		kiSeries := make([]float64, len(history))
		kdSeries := make([]float64, len(history))
		fitSeries := make([]float64, len(history))
		for i, h := range history {
			kpSeries[i], kiSeries[i], kdSeries[i], fitSeries[i] = h.Kp, h.Ki, h.Kd, h.Fitness
		}
		fmt.Println()
		fmt.Println(report.ASCII(fitSeries, "best fitness", 10))
		fmt.Println()
		fmt.Println(report.ASCIIMany([][]float64{kpSeries, kiSeries, kdSeries}, "Kp (red), Ki (green), Kd (blue)", 10))
	}

	if plot {
		paths, err := report.EvolutionPNG(st.Dir(runID), history)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}
	return nil
}

func compareRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	s := sim.Default()
	ctx := cmd.Context()

	var series []report.Series
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGO\tKP\tKI\tKD\tRISE\tSETTLE\tOVERSHOOT\tFINAL")

	for _, runID := range args {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		loop, err := storedLoop(meta)
		if err != nil {
			return err
		}

		info, err := s.StepInfo(ctx, loop)
		if err != nil {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\terror: %v\t\t\t\n",
				meta.ID, meta.Algorithm, meta.Gains[0], meta.Gains[1], meta.Gains[2], err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4fs\t%.4fs\t%.2f%%\t%.4f\n",
			meta.ID, meta.Algorithm, meta.Gains[0], meta.Gains[1], meta.Gains[2],
			info.RiseTime, info.SettlingTime, info.Overshoot, info.SteadyStateValue)

		resp, err := s.StepResponse(ctx, loop, nil)
		if err != nil {
			continue
		}
		series = append(series, report.Series{Label: meta.Algorithm + " " + meta.ID, X: resp.Times, Y: resp.Outputs})
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) == 0 {
		return nil
	}

	// Default grids differ per loop; the terminal chart resamples onto the
	// longest one.
	fmt.Println()
	fmt.Println(report.ASCIIMany(resample(series), "step responses", 12))

	if plotPath != "" {
		if err := report.StepPNG(plotPath, "Step response comparison", series...); err != nil {
			return err
		}
		fmt.Printf("\nplot written to %s\n", plotPath)
	}
	return nil
}

// resample linearly interpolates every series onto 200 points over the
// longest time span, holding the final value past each series' end.
func resample(series []report.Series) [][]float64 {
	const n = 200
	end := 0.0
	for _, s := range series {
		if k := len(s.X); k > 0 && s.X[k-1] > end {
			end = s.X[k-1]
		}
	}

	out := make([][]float64, len(series))
	for i, s := range series {
		ys := make([]float64, n)
		j := 0
		for k := range ys {
			t := end * float64(k) / float64(n-1)
			for j+1 < len(s.X) && s.X[j+1] < t {
				j++
			}
			switch {
			case len(s.X) == 0:
			case j+1 >= len(s.X):
				ys[k] = s.Y[len(s.Y)-1]
			default:
				x0, x1 := s.X[j], s.X[j+1]
				frac := (t - x0) / (x1 - x0)
				ys[k] = s.Y[j] + frac*(s.Y[j+1]-s.Y[j])
			}
		}
		out[i] = ys
	}
	return out
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNUM\tDEN\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%v\t%v\t%s\n", name, p.Num, p.Den, p.Description)
	}
	return w.Flush()
}
