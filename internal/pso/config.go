package pso

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("pso: invalid configuration")

// Range is the closed interval one coordinate is clipped to.
type Range struct {
	Low  float64
	High float64
}

func (r Range) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) || math.IsInf(r.Low, 0) || math.IsInf(r.High, 0) {
		return fmt.Errorf("%w: range must be finite, got [%g, %g]", ErrInvalidConfig, r.Low, r.High)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: lower bound %g exceeds upper bound %g", ErrInvalidConfig, r.Low, r.High)
	}
	return nil
}

func (r Range) clamp(v float64) float64 {
	return math.Max(r.Low, math.Min(r.High, v))
}

type Config struct {
	Particles   int
	Generations int

	W  float64
	C1 float64
	C2 float64

	// VMax limits each velocity component to [-VMax, VMax]. Zero disables it.
	VMax float64

	// Bounds holds one range per gain, (Kp, Ki, Kd) for a PID.
	Bounds []Range
	Seed   int64
}

func DefaultConfig() Config {
	return Config{
		Particles:   30,
		Generations: 50,

		W:  0.9,
		C1: 0.6,
		C2: 0.8,

		Bounds: []Range{{0, 10}, {0, 10}, {0, 10}},
		Seed:   1,
	}
}

func (c Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be > 0, got %d", ErrInvalidConfig, c.Particles)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("%w: generations must be > 0, got %d", ErrInvalidConfig, c.Generations)
	}
	for name, v := range map[string]float64{"w": c.W, "c1": c.C1, "c2": c.C2, "vmax": c.VMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %g", ErrInvalidConfig, name, v)
		}
	}
	if len(c.Bounds) == 0 {
		return fmt.Errorf("%w: no bounds", ErrInvalidConfig)
	}
	for i, r := range c.Bounds {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("bound %d: %w", i, err)
		}
	}
	return nil
}
