package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pidtune/internal/dynamo"
	"github.com/san-kum/pidtune/internal/integrators"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/metrics"
)

// maxSubsteps caps integration steps per output interval.
const maxSubsteps = 10000

// Simulator computes forced and step responses of transfer functions.
// It holds no per-run state and is safe for concurrent use; each run gets
// its own integrator from the factory.
type Simulator struct {
	newIntegrator func() dynamo.Integrator
	cfg           dynamo.Config
}

func New(newIntegrator func() dynamo.Integrator, cfg dynamo.Config) *Simulator {
	if newIntegrator == nil {
		newIntegrator = func() dynamo.Integrator { return integrators.NewRK4() }
	}
	return &Simulator{newIntegrator: newIntegrator, cfg: cfg}
}

// Default is an RK4 simulator with dynamo.DefaultConfig.
func Default() *Simulator {
	return New(nil, dynamo.DefaultConfig())
}

func (s *Simulator) Config() dynamo.Config { return s.cfg }

// StepResponse simulates a unit step. A nil grid selects DefaultTimeGrid.
func (s *Simulator) StepResponse(ctx context.Context, tf lti.TransferFunction, times []float64) (*Response, error) {
	if times == nil {
		var err error
		times, err = DefaultTimeGrid(tf, s.cfg.Duration)
		if err != nil {
			return nil, err
		}
	}
	return s.run(ctx, tf, ones(len(times)), times)
}

// Lsim simulates the response to an arbitrary input sampled on times. The
// input is held constant over each interval.
func (s *Simulator) Lsim(ctx context.Context, tf lti.TransferFunction, input, times []float64) (*Response, error) {
	return s.run(ctx, tf, input, times)
}

// StepInfo simulates a unit step on the default grid and extracts rise time
// (10%-90%), overshoot (percent), settling time (2% band) and the
// steady-state value (DC gain). Unstable models fail with ErrUnstable.
func (s *Simulator) StepInfo(ctx context.Context, tf lti.TransferFunction) (Info, error) {
	stable, err := tf.IsStable()
	if err != nil {
		return Info{}, err
	}
	if !stable {
		return Info{}, fmt.Errorf("%w: poles on or right of the imaginary axis", dynamo.ErrUnstable)
	}

	final := tf.DCGain()
	if final == 0 || math.IsNaN(final) || math.IsInf(final, 0) {
		return Info{}, fmt.Errorf("%w: steady-state value %v", dynamo.ErrInvalidModel, final)
	}

	times, err := DefaultTimeGrid(tf, s.cfg.Duration)
	if err != nil {
		return Info{}, err
	}

	peak := metrics.NewPeak(final)
	rise := metrics.NewRiseTime(final)
	settle := metrics.NewSettlingTime(final)
	if _, err := s.run(ctx, tf, ones(len(times)), times, peak, rise, settle); err != nil {
		return Info{}, err
	}

	riseTime := rise.Value()
	if math.IsNaN(riseTime) {
		riseTime = times[len(times)-1]
	}

	return Info{
		RiseTime:         riseTime,
		SettlingTime:     settle.Value(),
		Overshoot:        peak.Overshoot(final),
		SteadyStateValue: final,
		Peak:             peak.Value(),
		PeakTime:         peak.Time(),
	}, nil
}

func (s *Simulator) run(ctx context.Context, tf lti.TransferFunction, input, times []float64, observers ...dynamo.Metric) (*Response, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateGrid(times); err != nil {
		return nil, err
	}
	if len(input) != len(times) {
		return nil, fmt.Errorf("%w: %d input samples for %d times", dynamo.ErrDimensionMismatch, len(input), len(times))
	}

	ss, err := tf.Realize()
	if err != nil {
		return nil, err
	}
	rho := spectralRadius(tf)
	integ := s.newIntegrator()

	for _, m := range observers {
		m.Reset()
	}

	result := &Response{
		Times:   append([]float64(nil), times...),
		Outputs: make([]float64, len(times)),
	}

	x := make(dynamo.State, ss.StateDim())
	for k, t := range times {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := dynamo.Control{input[k]}
		y := ss.Output(x, u)
		if math.IsNaN(y) || math.IsInf(y, 0) || (s.cfg.DivergenceLimit > 0 && math.Abs(y) > s.cfg.DivergenceLimit) {
			return result, &dynamo.SimulationError{Step: k, Time: t, State: x.Clone(), Wrapped: dynamo.ErrUnstable}
		}
		result.Outputs[k] = y
		for _, m := range observers {
			m.Observe(t, y)
		}

		if k == len(times)-1 {
			break
		}

		x, err = s.advance(integ, ss, x, u, t, times[k+1]-t, rho)
		if err != nil {
			return result, &dynamo.SimulationError{Step: k, Time: t, State: x, Wrapped: err}
		}
	}

	return result, nil
}

// advance integrates x across one grid interval of length h.
func (s *Simulator) advance(integ dynamo.Integrator, dyn dynamo.System, x dynamo.State, u dynamo.Control, t, h, rho float64) (dynamo.State, error) {
	if dyn.StateDim() == 0 {
		return x, nil
	}
	if adaptive, ok := integ.(dynamo.AdaptiveIntegrator); ok && s.cfg.Adaptive {
		return s.advanceAdaptive(adaptive, dyn, x, u, t, h)
	}

	n := int(math.Ceil(h * rho / 0.5))
	n = max(1, min(n, maxSubsteps))
	dt := h / float64(n)
	for i := 0; i < n; i++ {
		x = integ.Step(dyn, x, u, t+float64(i)*dt, dt)
		if s.cfg.ValidateState && !x.IsValid() {
			return x, dynamo.ErrInvalidState
		}
	}
	return x, nil
}

func (s *Simulator) advanceAdaptive(integ dynamo.AdaptiveIntegrator, dyn dynamo.System, x dynamo.State, u dynamo.Control, t, h float64) (dynamo.State, error) {
	end := t + h
	step := h
	for end-t > 1e-12*math.Max(1, math.Abs(end)) {
		step = math.Min(step, end-t)
		next, suggested, err := integ.StepAdaptive(dyn, x, u, t, step, s.cfg.Tolerance)
		if err == nil && suggested >= 0.9*step {
			x = next
			t += step
			step = suggested
			continue
		}
		if step <= s.cfg.MinDt {
			return x, dynamo.ErrStepTooSmall
		}
		step = math.Min(suggested, step/2)
	}
	if s.cfg.ValidateState && !x.IsValid() {
		return x, dynamo.ErrInvalidState
	}
	return x, nil
}

func validateGrid(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: empty time grid", dynamo.ErrDimensionMismatch)
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("time grid must be strictly increasing (t[%d]=%f, t[%d]=%f)", i-1, times[i-1], i, times[i])
		}
	}
	return nil
}

func ones(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = 1
	}
	return u
}
