package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/pidtune/internal/lti"
)

const (
	minGridPoints = 100
	maxGridPoints = 5000
	maxFinalTime  = 1000.0
	// settlingCycles is how many of the slowest time constants the default
	// grid covers.
	settlingCycles = 7.0
)

// Grid returns an evenly spaced grid over [0, duration] with spacing dt.
func Grid(duration, dt float64) ([]float64, error) {
	if dt <= 0 || duration <= 0 {
		return nil, fmt.Errorf("invalid grid: duration=%f dt=%f", duration, dt)
	}
	n := int(math.Round(duration/dt)) + 1
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times, nil
}

// DefaultTimeGrid picks a grid long enough for the slowest pole to decay and
// fine enough to resolve the fastest one. Models without dynamics fall back
// to [0, fallback] with 100 points.
func DefaultTimeGrid(tf lti.TransferFunction, fallback float64) ([]float64, error) {
	poles, err := tf.CancelOrigin().Poles()
	if err != nil {
		return nil, err
	}

	slowest, fastest := math.Inf(1), 0.0
	for _, p := range poles {
		if sigma := math.Abs(real(p)); sigma > 1e-12 && sigma < slowest {
			slowest = sigma
		}
		if mag := cmplx.Abs(p); mag > fastest {
			fastest = mag
		}
	}

	final := fallback
	if !math.IsInf(slowest, 1) {
		final = math.Min(settlingCycles/slowest, maxFinalTime)
	}
	if final <= 0 {
		final = 10
	}

	points := minGridPoints
	if fastest > 0 {
		points = int(math.Ceil(final*fastest*5)) + 1
	}
	points = max(minGridPoints, min(points, maxGridPoints))

	return Grid(final, final/float64(points-1))
}

// spectralRadius bounds how fast the realization can move; it decides the
// integration substeps per grid interval.
func spectralRadius(tf lti.TransferFunction) float64 {
	poles, err := tf.CancelOrigin().Poles()
	if err != nil {
		return 0
	}
	r := 0.0
	for _, p := range poles {
		r = math.Max(r, cmplx.Abs(p))
	}
	return r
}
