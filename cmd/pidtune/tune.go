package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/pidtune/internal/ga"
	"github.com/san-kum/pidtune/internal/optim"
	"github.com/san-kum/pidtune/internal/pso"
	"github.com/san-kum/pidtune/internal/report"
	"github.com/san-kum/pidtune/internal/storage"
	"github.com/san-kum/pidtune/internal/tui"
)

var summaryBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("86")).
	Padding(0, 1)

// monitored runs fn, optionally behind the live view. The view quits when
// fn returns; quitting the view early cancels ctx.
func monitored(ctx context.Context, cancel context.CancelFunc, title string, updates chan tui.Progress, fn func(context.Context) error) error {
	if updates == nil {
		return fn(ctx)
	}

	errc := make(chan error, 1)
	go func() {
		defer close(updates)
		errc <- fn(ctx)
	}()

	if err := tui.Run(title, updates, cancel); err != nil {
		cancel()
		<-errc
		return err
	}
	return <-errc
}

// progressSink returns a channel and an observer feeding it, or nils when
// the live view is off. Sends give up once ctx is done.
func progressSink(ctx context.Context) (chan tui.Progress, func(gen int, best []float64, fit float64)) {
	if !useTUI {
		return nil, nil
	}
	updates := make(chan tui.Progress, 16)
	return updates, func(gen int, best []float64, fit float64) {
		p := tui.Progress{Generation: gen, Gains: append([]float64(nil), best...), Fitness: fit}
		select {
		case updates <- p:
		case <-ctx.Done():
		}
	}
}

// engineLogger keeps log lines off the terminal while the live view owns it.
func engineLogger(e *env) *slog.Logger {
	if useTUI {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

func runGA(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	updates, observe := progressSink(ctx)
	opts := []ga.Option{ga.WithLogger(engineLogger(e))}
	if observe != nil {
		opts = append(opts, ga.WithObserver(func(r ga.Record) { observe(r.Generation, r.Best, r.BestFitness) }))
	}

	engine, err := ga.New(e.cfg.GA.Engine(), e.eval, opts...)
	if err != nil {
		return err
	}

	var res *ga.Result
	err = monitored(ctx, cancel, "pidtune ga", updates, func(ctx context.Context) error {
		var runErr error
		res, runErr = engine.Run(ctx)
		return runErr
	})
	if res == nil {
		return err
	}
	if err != nil {
		e.logger.Warn("search interrupted, keeping best so far", "error", err)
	}

	kp, ki, kd := res.Gains()
	meta := storage.RunMetadata{
		Algorithm:   "ga",
		Seed:        e.cfg.GA.Seed,
		Gains:       [3]float64{kp, ki, kd},
		BestFitness: res.Best.Fitness,
		Converged:   res.Converged,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		DurationMS:  res.Duration.Milliseconds(),
	}
	return finish(cmd.Context(), e, meta, storage.FromGA(res))
}

func runPSO(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	updates, observe := progressSink(ctx)
	opts := []pso.Option{pso.WithLogger(engineLogger(e))}
	if observe != nil {
		opts = append(opts, pso.WithObserver(func(r pso.Record) { observe(r.Generation, r.Best, r.BestFitness) }))
	}

	engine, err := pso.New(e.cfg.PSO.Engine(), e.eval, opts...)
	if err != nil {
		return err
	}

	var res *pso.Result
	err = monitored(ctx, cancel, "pidtune pso", updates, func(ctx context.Context) error {
		var runErr error
		res, runErr = engine.Run(ctx)
		return runErr
	})
	if res == nil {
		return err
	}
	if err != nil {
		e.logger.Warn("search interrupted, keeping best so far", "error", err)
	}
	if res.Best == nil {
		return errors.New("no particle produced a usable response")
	}

	kp, ki, kd := res.Gains()
	meta := storage.RunMetadata{
		Algorithm:   "pso",
		Seed:        e.cfg.PSO.Seed,
		Gains:       [3]float64{kp, ki, kd},
		BestFitness: res.BestFitness,
		Generations: res.Generations,
		Evaluations: res.Evaluations,
		DurationMS:  res.Duration.Milliseconds(),
	}
	return finish(cmd.Context(), e, meta, storage.FromPSO(res))
}

func runGrid(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if points < 1 {
		return fmt.Errorf("--points must be positive, got %d", points)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	ranges := e.cfg.PSO.Engine().Bounds
	axes := make([][]float64, len(ranges))
	for i, r := range ranges {
		axes[i] = optim.Linspace(r.Low, r.High, points)
	}
	search, err := optim.NewGridSearch(axes)
	if err != nil {
		return err
	}

	e.logger.Info("grid search", "points", search.Size())
	start := time.Now()
	res, err := search.Search(ctx, e.eval)
	if err != nil {
		return err
	}
	if res.Failures > 0 {
		e.logger.Warn("grid points failed to simulate", "failed", res.Failures, "total", res.Evaluations)
	}

	meta := storage.RunMetadata{
		Algorithm:   "grid",
		Gains:       [3]float64{res.Best[0], res.Best[1], res.Best[2]},
		BestFitness: res.BestFitness,
		Generations: 1,
		Evaluations: res.Evaluations,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	history := []storage.HistoryRow{{
		Generation: 0, Kp: res.Best[0], Ki: res.Best[1], Kd: res.Best[2], Fitness: res.BestFitness,
	}}
	return finish(cmd.Context(), e, meta, history)
}

// finish measures the best loop, stores the run and prints a summary.
func finish(ctx context.Context, e *env, meta storage.RunMetadata, history []storage.HistoryRow) error {
	meta.Plant = e.plantName
	meta.Num = e.plant.Num()
	meta.Den = e.plant.Den()
	meta.Cost = e.cfg.Cost.Name

	loop := e.eval.ClosedLoop(meta.Gains[0], meta.Gains[1], meta.Gains[2])
	info, infoErr := e.sim.StepInfo(ctx, loop)
	if infoErr == nil {
		meta.Metrics = map[string]float64{
			"rise_time":     info.RiseTime,
			"settling_time": info.SettlingTime,
			"overshoot":     info.Overshoot,
			"steady_state":  info.SteadyStateValue,
		}
	} else {
		e.logger.Warn("best loop has no step characteristics", "error", infoErr)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, history)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	resp, respErr := e.sim.StepResponse(ctx, loop, nil)
	if respErr == nil {
		if err := st.SaveResponse(runID, resp.Times, resp.Outputs); err != nil {
			return err
		}
	}

	if plot {
		dir := st.Dir(runID)
		if _, err := report.EvolutionPNG(dir, history); err != nil {
			return err
		}
		if respErr == nil {
			series := report.Series{Label: meta.Algorithm, X: resp.Times, Y: resp.Outputs}
			if err := report.StepPNG(filepath.Join(dir, "step.png"), "Closed-loop step response", series); err != nil {
				return err
			}
		}
		fmt.Printf("plots written to %s\n", dir)
	}

	summary := fmt.Sprintf("run       %s\nplant     %s\ncost      %s\nKp        %.6f\nKi        %.6f\nKd        %.6f\nfitness   %.6g\ngens      %d (%d evaluations, %dms)",
		runID, meta.Plant, meta.Cost,
		meta.Gains[0], meta.Gains[1], meta.Gains[2],
		meta.BestFitness, meta.Generations, meta.Evaluations, meta.DurationMS)
	if infoErr == nil {
		summary += fmt.Sprintf("\nrise      %.4fs\nsettling  %.4fs\novershoot %.2f%%\nfinal     %.4f",
			info.RiseTime, info.SettlingTime, info.Overshoot, info.SteadyStateValue)
	}
	fmt.Println(summaryBox.Render(summary))

	if len(history) > 1 {
		fitness := make([]float64, len(history))
		for i, h := range history {
			fitness[i] = h.Fitness
		}
		fmt.Println()
		fmt.Println(report.ASCII(fitness, "best fitness per generation", 10))
	}
	return nil
}
