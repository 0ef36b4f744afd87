package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/pidtune/internal/dynamo"
)

// harmonicOscillator: x'' = -x, output is position.
type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Output(x dynamo.State, u dynamo.Control) float64 { return x[0] }

// lag: x' = -x + u, a unit first-order lag.
type lag struct{}

func (l *lag) StateDim() int { return 1 }

func (l *lag) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{-x[0] + u[0]}
}

func (l *lag) Output(x dynamo.State, u dynamo.Control) float64 { return x[0] }

func TestRK4Accuracy(t *testing.T) {
	dyn := &harmonicOscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4DoesNotAliasInput(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{0.5}
	next := integ.Step(&lag{}, x, dynamo.Control{1}, 0, 0.1)
	if x[0] != 0.5 {
		t.Errorf("input state mutated: %v", x)
	}
	if next[0] <= 0.5 {
		t.Errorf("expected lag to move toward 1, got %f", next[0])
	}
}

func TestStepResponseOfLag(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 5e-3},
		{"rk4", NewRK4(), 1e-8},
		{"rk45", NewRK45(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{0}
			u := dynamo.Control{1}
			dt := 0.001
			for i := 0; i < 1000; i++ {
				x = tt.integ.Step(&lag{}, x, u, float64(i)*dt, dt)
			}
			want := 1 - math.Exp(-1)
			if math.Abs(x[0]-want) > tt.tol {
				t.Errorf("y(1) = %.9f, want %.9f", x[0], want)
			}
		})
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	x, newDt, err := integrator.StepAdaptive(&harmonicOscillator{}, dynamo.State{1.0, 0.0}, nil, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}
}

func TestRK45_ShrinksStepOnLooseAccuracy(t *testing.T) {
	integrator := NewRK45()
	_, newDt, err := integrator.StepAdaptive(&harmonicOscillator{}, dynamo.State{1.0, 0.0}, nil, 0, 1.0, 1e-12)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if newDt >= 1.0 {
		t.Errorf("expected smaller dt for a tight tolerance, got %f", newDt)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, nil, 0, 0.01)
	}
}
