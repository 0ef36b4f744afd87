package fitness

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLengthMismatch = errors.New("fitness: setpoint and response lengths differ")
	ErrEmptyResponse  = errors.New("fitness: empty response")
	ErrUnknownCost    = errors.New("fitness: unknown cost function")
)

// CostFunc measures tracking error of a response against a setpoint. Costs
// are non-negative and minimized.
type CostFunc func(setpoint, measured []float64) (float64, error)

// CostFactory builds a cost for a sample spacing dt.
type CostFactory func(dt float64) CostFunc

var costs = map[string]CostFactory{
	"mse":  func(float64) CostFunc { return MSE },
	"ise":  ISE,
	"iae":  IAE,
	"itse": ITSE,
	"itae": ITAE,
	"lqr":  func(float64) CostFunc { return LQR(1, 1) },
}

// LookupCost resolves a cost by name (case-insensitive).
func LookupCost(name string, dt float64) (CostFunc, error) {
	f, ok := costs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownCost, name, strings.Join(CostNames(), ", "))
	}
	return f(dt), nil
}

func CostNames() []string {
	names := make([]string, 0, len(costs))
	for name := range costs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func trackingError(setpoint, measured []float64) ([]float64, error) {
	if len(setpoint) != len(measured) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(setpoint), len(measured))
	}
	if len(measured) == 0 {
		return nil, ErrEmptyResponse
	}
	return floats.SubTo(make([]float64, len(setpoint)), setpoint, measured), nil
}

// MSE is the mean squared error.
func MSE(setpoint, measured []float64) (float64, error) {
	e, err := trackingError(setpoint, measured)
	if err != nil {
		return 0, err
	}
	return floats.Dot(e, e) / float64(len(e)), nil
}

// ISE is the integral of squared error, sum(e^2)*dt.
func ISE(dt float64) CostFunc {
	return func(setpoint, measured []float64) (float64, error) {
		e, err := trackingError(setpoint, measured)
		if err != nil {
			return 0, err
		}
		return floats.Dot(e, e) * dt, nil
	}
}

// IAE is the integral of absolute error, sum(|e|)*dt.
func IAE(dt float64) CostFunc {
	return func(setpoint, measured []float64) (float64, error) {
		e, err := trackingError(setpoint, measured)
		if err != nil {
			return 0, err
		}
		return floats.Norm(e, 1) * dt, nil
	}
}

// ITSE weights each squared error by its sample time k*dt.
func ITSE(dt float64) CostFunc {
	return func(setpoint, measured []float64) (float64, error) {
		e, err := trackingError(setpoint, measured)
		if err != nil {
			return 0, err
		}
		sum := 0.0
		for k, v := range e {
			sum += float64(k) * dt * v * v
		}
		return sum * dt, nil
	}
}

// ITAE weights each absolute error by its sample time k*dt.
func ITAE(dt float64) CostFunc {
	return func(setpoint, measured []float64) (float64, error) {
		e, err := trackingError(setpoint, measured)
		if err != nil {
			return 0, err
		}
		for k := range e {
			if e[k] < 0 {
				e[k] = -e[k]
			}
			e[k] *= float64(k) * dt
		}
		return floats.Sum(e) * dt, nil
	}
}

// LQR is q*sum(e^2) + r*sum(dy^2), with successive output differences
// standing in for control effort. Negative weights are rejected.
func LQR(q, r float64) CostFunc {
	return func(setpoint, measured []float64) (float64, error) {
		if q < 0 || r < 0 {
			return 0, fmt.Errorf("fitness: lqr weights must be non-negative (q=%g, r=%g)", q, r)
		}
		e, err := trackingError(setpoint, measured)
		if err != nil {
			return 0, err
		}
		effort := 0.0
		for k := 1; k < len(measured); k++ {
			d := measured[k] - measured[k-1]
			effort += d * d
		}
		return q*floats.Dot(e, e) + r*effort, nil
	}
}
