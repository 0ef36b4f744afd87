package metrics

import "math"

// RiseTime measures the time between the output first reaching Low and High
// fractions of the final value.
type RiseTime struct {
	name      string
	final     float64
	low, high float64
	tLow      float64
	tHigh     float64
	hitLow    bool
	hitHigh   bool
}

func NewRiseTime(final float64) *RiseTime {
	return &RiseTime{name: "rise_time", final: final, low: 0.1, high: 0.9}
}

// WithLimits overrides the default 10%-90% limits.
func (r *RiseTime) WithLimits(low, high float64) *RiseTime {
	r.low, r.high = low, high
	return r
}

func (r *RiseTime) Name() string { return r.name }

func (r *RiseTime) Observe(t, y float64) {
	v := y * sign(r.final)
	target := math.Abs(r.final)
	if !r.hitLow && v >= r.low*target {
		r.tLow = t
		r.hitLow = true
	}
	if !r.hitHigh && v >= r.high*target {
		r.tHigh = t
		r.hitHigh = true
	}
}

// Value is NaN until both limits have been crossed.
func (r *RiseTime) Value() float64 {
	if !r.hitLow || !r.hitHigh {
		return math.NaN()
	}
	return r.tHigh - r.tLow
}

func (r *RiseTime) Reset() {
	r.tLow, r.tHigh = 0, 0
	r.hitLow, r.hitHigh = false, false
}
