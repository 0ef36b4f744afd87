package fitness

import (
	"math"

	"github.com/san-kum/pidtune/internal/sim"
	"gonum.org/v1/gonum/floats"
)

// MetricsFunc scores step-response characteristics.
type MetricsFunc func(info sim.Info) float64

// Partials returns the four composite sub-scores: rise time, steady-state
// error, overshoot and settling time.
func Partials(info sim.Info) [4]float64 {
	sse := math.Abs(1 - info.SteadyStateValue)

	f1 := 100 / (info.RiseTime + 1)
	f2 := 100 / (sse + 0.1)

	f3 := 100.0
	if sse != 0 {
		f3 = 100 / (info.Overshoot + 1)
	}

	f4 := 100.0
	if info.SettlingTime > 10 {
		f4 = 100 / (info.SettlingTime + 0.01)
	}

	return [4]float64{f1, f2, f3, f4}
}

// Composite is the mean of Partials. Overshoot is read as a percentage.
func Composite(info sim.Info) float64 {
	p := Partials(info)
	return floats.Sum(p[:]) / float64(len(p))
}
