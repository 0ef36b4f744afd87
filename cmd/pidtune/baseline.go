package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/report"
	"github.com/san-kum/pidtune/internal/storage"
	"github.com/san-kum/pidtune/internal/tuning"
)

func runZN(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var gains tuning.Gains
	switch {
	case nichols:
		gains, err = tuning.NicholsBlack(ctx, e.sim, e.plant, nil)
	case ku > 0:
		gains, err = tuning.TuneZieglerNichols(ctx, e.sim, e.plant, ku, nil)
	default:
		return errors.New("zn needs --ku > 0 or --nichols")
	}
	if err != nil {
		return err
	}
	e.logger.Info("baseline gains", "kp", gains.Kp, "ki", gains.Ki, "kd", gains.Kd)

	ev := e.eval.Evaluate(ctx, gains.Slice())
	if ev.Failed() {
		e.logger.Warn("baseline loop failed to simulate", "error", ev.Err)
	}

	algo := "zn"
	if nichols {
		algo = "nichols"
	}
	meta := storage.RunMetadata{
		Algorithm:   algo,
		Gains:       [3]float64{gains.Kp, gains.Ki, gains.Kd},
		BestFitness: ev.Fitness,
		Generations: 1,
		Evaluations: 1,
	}
	history := []storage.HistoryRow{{Kp: gains.Kp, Ki: gains.Ki, Kd: gains.Kd, Fitness: ev.Fitness}}
	return finish(ctx, e, meta, history)
}

func runStep(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tf := e.eval.ClosedLoop(kp, ki, kd)
	title := fmt.Sprintf("closed loop, Kp=%g Ki=%g Kd=%g", kp, ki, kd)
	if openLoop {
		tf = e.plant
		title = "open loop"
	}

	resp, err := e.sim.StepResponse(ctx, tf, nil)
	if err != nil {
		return err
	}

	fmt.Printf("model: %s\n", tf)
	if info, err := e.sim.StepInfo(ctx, tf); err == nil {
		fmt.Printf("rise time:     %.4fs\n", info.RiseTime)
		fmt.Printf("settling time: %.4fs\n", info.SettlingTime)
		fmt.Printf("overshoot:     %.2f%%\n", info.Overshoot)
		fmt.Printf("peak:          %.4f at %.4fs\n", info.Peak, info.PeakTime)
		fmt.Printf("steady state:  %.4f\n\n", info.SteadyStateValue)
	} else {
		fmt.Printf("no step characteristics: %v\n\n", err)
	}

	fmt.Println(report.ASCII(resp.Outputs, title, 12))

	if plotPath != "" {
		series := report.Series{Label: "y(t)", X: resp.Times, Y: resp.Outputs}
		if err := report.StepPNG(plotPath, title, series); err != nil {
			return err
		}
		fmt.Printf("\nplot written to %s\n", plotPath)
	}
	return nil
}

// storedLoop rebuilds the closed loop of a saved run.
func storedLoop(meta *storage.RunMetadata) (lti.TransferFunction, error) {
	plant, err := lti.New(meta.Num, meta.Den)
	if err != nil {
		return lti.TransferFunction{}, fmt.Errorf("run %s: %w", meta.ID, err)
	}
	return lti.CloseLoop(lti.PID(meta.Gains[0], meta.Gains[1], meta.Gains[2]), plant), nil
}
