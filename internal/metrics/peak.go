package metrics

import "math"

// Peak tracks the largest excursion of the output in the direction of the
// expected final value.
type Peak struct {
	name  string
	sign  float64
	value float64
	time  float64
	seen  bool
}

// NewPeak tracks maxima of y when final >= 0, minima otherwise.
func NewPeak(final float64) *Peak {
	return &Peak{name: "peak", sign: sign(final)}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(t, y float64) {
	if !p.seen || p.sign*y > p.sign*p.value {
		p.value = y
		p.time = t
		p.seen = true
	}
}

func (p *Peak) Value() float64 { return p.value }

// Time is when the peak was first reached.
func (p *Peak) Time() float64 { return p.time }

func (p *Peak) Reset() {
	p.value = 0
	p.time = 0
	p.seen = false
}

// Overshoot is the peak excursion beyond final, in percent of |final|.
func (p *Peak) Overshoot(final float64) float64 {
	if final == 0 {
		return 0
	}
	os := (p.sign*p.value - math.Abs(final)) / math.Abs(final) * 100
	if os < 0 {
		return 0
	}
	return os
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
