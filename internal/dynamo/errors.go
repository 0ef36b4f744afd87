package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the closed loop has poles in the right half plane
	// or the simulated output diverged.
	ErrUnstable = errors.New("dynamo: system unstable (output diverged)")

	// ErrInvalidModel indicates a transfer function that cannot be realized
	// or analyzed (empty or zero denominator, improper model).
	ErrInvalidModel = errors.New("dynamo: invalid model")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates mismatched input/time grid lengths.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between input and time grid")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
