package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Control is the input vector applied over one integration step.
type Control []float64

// System is a continuous-time model dx/dt = f(x, u, t) with a scalar output.
type System interface {
	Derive(x State, u Control, t float64) State
	Output(x State, u Control) float64
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

// Metric accumulates a scalar over an output trajectory.
type Metric interface {
	Name() string
	Observe(t, y float64)
	Value() float64
	Reset()
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
	// DivergenceLimit aborts a run once |y| exceeds it. Zero disables the check.
	DivergenceLimit float64
}

func DefaultConfig() Config {
	return Config{
		Dt:              0.01,
		Duration:        10.0,
		Tolerance:       1e-6,
		MinDt:           1e-8,
		Adaptive:        false,
		ValidateState:   true,
		DivergenceLimit: 1e9,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Adaptive && c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive for adaptive stepping")
	}
	if c.DivergenceLimit < 0 {
		return fmt.Errorf("divergence limit must be >= 0, got %f", c.DivergenceLimit)
	}
	return nil
}
