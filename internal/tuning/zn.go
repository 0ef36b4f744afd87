package tuning

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/sim"
)

var ErrNoOscillation = errors.New("tuning: not enough crossings to estimate the oscillation period")

// Gains is a PID gain set in parallel form.
type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

func (g Gains) Slice() []float64 { return []float64{g.Kp, g.Ki, g.Kd} }

func (g Gains) String() string {
	return fmt.Sprintf("Kp=%.4f Ki=%.4f Kd=%.4f", g.Kp, g.Ki, g.Kd)
}

// ZieglerNichols applies the classic PID rule to an ultimate gain ku and
// period tu: Kp = 0.6 ku, Ti = tu/2, Td = tu/8.
func ZieglerNichols(ku, tu float64) (Gains, error) {
	if !(ku > 0) || math.IsInf(ku, 0) {
		return Gains{}, fmt.Errorf("tuning: ultimate gain must be positive and finite, got %g", ku)
	}
	if !(tu > 0) || math.IsInf(tu, 0) {
		return Gains{}, fmt.Errorf("tuning: oscillation period must be positive and finite, got %g", tu)
	}
	kp := 0.6 * ku
	ti := 0.5 * tu
	td := 0.125 * tu
	return Gains{Kp: kp, Ki: kp / ti, Kd: kp * td}, nil
}

// OscillationPeriod estimates the period of y around level as twice the mean
// spacing between successive crossings.
func OscillationPeriod(times, outputs []float64, level float64) (float64, error) {
	if len(times) != len(outputs) {
		return 0, fmt.Errorf("tuning: %d times for %d outputs", len(times), len(outputs))
	}

	var crossings []float64
	for i := 0; i+1 < len(outputs); i++ {
		if sign(outputs[i]-level) != sign(outputs[i+1]-level) {
			crossings = append(crossings, times[i])
		}
	}
	if len(crossings) < 2 {
		return 0, fmt.Errorf("%w: found %d", ErrNoOscillation, len(crossings))
	}

	span := crossings[len(crossings)-1] - crossings[0]
	return 2 * span / float64(len(crossings)-1), nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// UltimateResponse is the unit-step response of plant under proportional
// feedback ku. A nil grid uses the simulator's Duration and Dt.
func UltimateResponse(ctx context.Context, s *sim.Simulator, plant lti.TransferFunction, ku float64, times []float64) (*sim.Response, error) {
	if times == nil {
		cfg := s.Config()
		var err error
		if times, err = sim.Grid(cfg.Duration, cfg.Dt); err != nil {
			return nil, err
		}
	}
	gain := lti.MustNew([]float64{ku}, []float64{1})
	return s.StepResponse(ctx, lti.CloseLoop(gain, plant), times)
}

// TuneZieglerNichols simulates the loop at the ultimate gain, measures the
// oscillation period around the setpoint and applies ZieglerNichols.
func TuneZieglerNichols(ctx context.Context, s *sim.Simulator, plant lti.TransferFunction, ku float64, times []float64) (Gains, error) {
	resp, err := UltimateResponse(ctx, s, plant, ku, times)
	if err != nil {
		return Gains{}, fmt.Errorf("ultimate response: %w", err)
	}
	tu, err := OscillationPeriod(resp.Times, resp.Outputs, 1)
	if err != nil {
		return Gains{}, err
	}
	return ZieglerNichols(ku, tu)
}
