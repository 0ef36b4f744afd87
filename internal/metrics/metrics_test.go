package metrics

import (
	"math"
	"testing"
)

func feed(m interface{ Observe(t, y float64) }, times, ys []float64) {
	for i := range times {
		m.Observe(times[i], ys[i])
	}
}

func TestPeakAndOvershoot(t *testing.T) {
	p := NewPeak(1)
	feed(p, []float64{0, 1, 2, 3}, []float64{0, 1.2, 0.9, 1.0})

	if p.Value() != 1.2 {
		t.Errorf("peak = %v, want 1.2", p.Value())
	}
	if p.Time() != 1 {
		t.Errorf("peak time = %v, want 1", p.Time())
	}
	if os := p.Overshoot(1); math.Abs(os-20) > 1e-9 {
		t.Errorf("overshoot = %v, want 20", os)
	}

	p.Reset()
	feed(p, []float64{0, 1}, []float64{0, 0.5})
	if os := p.Overshoot(1); os != 0 {
		t.Errorf("monotonic response should have no overshoot, got %v", os)
	}
}

func TestPeakNegativeFinal(t *testing.T) {
	p := NewPeak(-1)
	feed(p, []float64{0, 1, 2}, []float64{0, -1.5, -1})
	if p.Value() != -1.5 {
		t.Errorf("peak = %v, want -1.5", p.Value())
	}
	if os := p.Overshoot(-1); math.Abs(os-50) > 1e-9 {
		t.Errorf("overshoot = %v, want 50", os)
	}
}

func TestRiseTime(t *testing.T) {
	r := NewRiseTime(1)
	if !math.IsNaN(r.Value()) {
		t.Error("rise time should be NaN before observations")
	}
	feed(r, []float64{0, 1, 2, 3, 4}, []float64{0, 0.05, 0.2, 0.95, 1})
	if got := r.Value(); got != 1 {
		t.Errorf("rise time = %v, want 1", got)
	}
}

func TestSettlingTime(t *testing.T) {
	tests := []struct {
		name    string
		ys      []float64
		want    float64
		settled bool
	}{
		{"enters band and stays", []float64{0, 0.5, 1.1, 1.01, 1.0}, 3, true},
		{"always inside", []float64{1, 1, 1, 1, 1}, 0, true},
		{"never settles", []float64{0, 0.5, 0.7, 0.8, 0.9}, 4, false},
		{"leaves band again", []float64{0, 1, 1.5, 1, 1}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettlingTime(1)
			feed(s, []float64{0, 1, 2, 3, 4}, tt.ys)
			if got := s.Value(); got != tt.want {
				t.Errorf("settling time = %v, want %v", got, tt.want)
			}
			if s.Settled() != tt.settled {
				t.Errorf("Settled() = %v, want %v", s.Settled(), tt.settled)
			}
		})
	}
}
