package ga

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("ga: invalid configuration")

// minPopulation leaves at least one survivor besides the two replaced slots,
// which keeps the best fitness non-decreasing.
const minPopulation = 3

type Config struct {
	PopulationSize int
	NVars          int
	NBits          int
	Bounds         Bounds
	MutationRate   float64
	// TargetFitness stops the run once the best fitness exceeds it.
	TargetFitness float64
	// MaxGenerations caps the run when the target is never reached.
	// Zero means no cap.
	MaxGenerations int
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		PopulationSize: 20,
		NVars:          3,
		NBits:          10,
		Bounds:         Bounds{Low: 0, High: 10},
		MutationRate:   0.05,
		TargetFitness:  75,
		MaxGenerations: 500,
		Seed:           1,
	}
}

func (c Config) Validate() error {
	if c.PopulationSize < minPopulation {
		return fmt.Errorf("%w: population size must be at least %d, got %d", ErrInvalidConfig, minPopulation, c.PopulationSize)
	}
	if c.NVars <= 0 {
		return fmt.Errorf("%w: n_vars must be positive, got %d", ErrInvalidConfig, c.NVars)
	}
	if c.NBits <= 0 || c.NBits > maxBits {
		return fmt.Errorf("%w: n_bits must be in [1, %d], got %d", ErrInvalidConfig, maxBits, c.NBits)
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.MutationRate) || c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("%w: mutation rate must be in [0, 1], got %g", ErrInvalidConfig, c.MutationRate)
	}
	if math.IsNaN(c.TargetFitness) {
		return fmt.Errorf("%w: target fitness is NaN", ErrInvalidConfig)
	}
	if c.MaxGenerations < 0 {
		return fmt.Errorf("%w: max generations must be >= 0, got %d", ErrInvalidConfig, c.MaxGenerations)
	}
	return nil
}
