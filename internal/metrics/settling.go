package metrics

import "math"

// SettlingTime is the first time after which the output stays within Band
// (relative to |final|) of the final value.
type SettlingTime struct {
	name    string
	final   float64
	band    float64
	settled float64
	lastT   float64
	outside bool
	seen    bool
}

func NewSettlingTime(final float64) *SettlingTime {
	return &SettlingTime{name: "settling_time", final: final, band: 0.02}
}

// WithBand overrides the default 2% band.
func (s *SettlingTime) WithBand(band float64) *SettlingTime {
	s.band = band
	return s
}

func (s *SettlingTime) Name() string { return s.name }

func (s *SettlingTime) Observe(t, y float64) {
	if !s.seen {
		s.settled = t
		s.seen = true
	}
	s.lastT = t
	if math.Abs(y-s.final) > s.band*math.Abs(s.final) {
		s.outside = true
		return
	}
	if s.outside {
		s.settled = t
		s.outside = false
	}
}

// Value is the settling time, or the last observed time when the output
// never entered the band for good.
func (s *SettlingTime) Value() float64 {
	if s.outside {
		return s.lastT
	}
	return s.settled
}

// Settled reports whether the last observed sample was inside the band.
func (s *SettlingTime) Settled() bool { return s.seen && !s.outside }

func (s *SettlingTime) Reset() {
	s.settled, s.lastT = 0, 0
	s.outside, s.seen = false, false
}
