package sim

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/pidtune/internal/dynamo"
	"github.com/san-kum/pidtune/internal/integrators"
	"github.com/san-kum/pidtune/internal/lti"
)

func firstOrder() lti.TransferFunction {
	return lti.MustNew([]float64{1}, []float64{1, 1})
}

func TestStepResponseFirstOrder(t *testing.T) {
	s := Default()
	times, err := Grid(5, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := s.StepResponse(context.Background(), firstOrder(), times)
	if err != nil {
		t.Fatalf("step response failed: %v", err)
	}
	if len(resp.Outputs) != len(times) {
		t.Fatalf("expected %d samples, got %d", len(times), len(resp.Outputs))
	}
	for i, tm := range resp.Times {
		want := 1 - math.Exp(-tm)
		if math.Abs(resp.Outputs[i]-want) > 1e-6 {
			t.Fatalf("t=%.2f: got %.8f, want %.8f", tm, resp.Outputs[i], want)
		}
	}
}

func TestStepResponseDefaultGrid(t *testing.T) {
	resp, err := Default().StepResponse(context.Background(), firstOrder(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Times) < minGridPoints {
		t.Errorf("default grid too coarse: %d points", len(resp.Times))
	}
	if math.Abs(resp.Final()-1) > 0.01 {
		t.Errorf("response did not settle: final %.4f", resp.Final())
	}
}

func TestStepResponsePureGain(t *testing.T) {
	tf := lti.MustNew([]float64{2}, []float64{1})
	resp, err := Default().StepResponse(context.Background(), tf, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, y := range resp.Outputs {
		if y != 2 {
			t.Fatalf("sample %d: got %f, want 2", i, y)
		}
	}
}

func TestStepInfoFirstOrder(t *testing.T) {
	info, err := Default().StepInfo(context.Background(), firstOrder())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
		tol  float64
	}{
		{"rise time", info.RiseTime, math.Log(9), 0.1},
		{"settling time", info.SettlingTime, math.Log(50), 0.1},
		{"overshoot", info.Overshoot, 0, 1e-6},
		{"steady state", info.SteadyStateValue, 1, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > tt.tol {
				t.Errorf("got %.4f, want %.4f", tt.got, tt.want)
			}
		})
	}
}

func TestStepInfoUnderdamped(t *testing.T) {
	tf := lti.MustNew([]float64{1}, []float64{1, 0.4, 1})
	info, err := Default().StepInfo(context.Background(), tf)
	if err != nil {
		t.Fatal(err)
	}

	zeta := 0.2
	want := 100 * math.Exp(-math.Pi*zeta/math.Sqrt(1-zeta*zeta))
	if math.Abs(info.Overshoot-want) > 2 {
		t.Errorf("overshoot: got %.2f%%, want %.2f%%", info.Overshoot, want)
	}
	if info.SettlingTime <= info.PeakTime {
		t.Errorf("settling %.2f before peak %.2f", info.SettlingTime, info.PeakTime)
	}
}

func TestStepInfoProportionalLoop(t *testing.T) {
	// Kp = 1 around 1/(s+1): the integrator pole cancels and the loop is 1/(s+2).
	cl := lti.CloseLoop(lti.PID(1, 0, 0), firstOrder())
	info, err := Default().StepInfo(context.Background(), cl)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(info.SteadyStateValue-0.5) > 1e-9 {
		t.Errorf("steady state: got %.6f, want 0.5", info.SteadyStateValue)
	}
}

func TestStepInfoUnstable(t *testing.T) {
	tf := lti.MustNew([]float64{1}, []float64{1, -1})
	_, err := Default().StepInfo(context.Background(), tf)
	if !errors.Is(err, dynamo.ErrUnstable) {
		t.Fatalf("expected ErrUnstable, got %v", err)
	}
}

func TestStepResponseDiverges(t *testing.T) {
	tf := lti.MustNew([]float64{1}, []float64{1, -1})
	times, _ := Grid(40, 0.01)

	_, err := Default().StepResponse(context.Background(), tf, times)
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrUnstable) {
		t.Errorf("expected ErrUnstable, got %v", err)
	}
	if simErr.Time <= 0 {
		t.Errorf("divergence reported at t=%f", simErr.Time)
	}
}

func TestLsimInputMismatch(t *testing.T) {
	_, err := Default().Lsim(context.Background(), firstOrder(), []float64{1, 1}, []float64{0, 0.1, 0.2})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLsimRejectsBadGrid(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
	}{
		{"empty", []float64{}},
		{"repeated", []float64{0, 0.1, 0.1}},
		{"decreasing", []float64{0, 0.2, 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := make([]float64, len(tt.times))
			if _, err := Default().Lsim(context.Background(), firstOrder(), u, tt.times); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLsimZeroInput(t *testing.T) {
	times, _ := Grid(1, 0.1)
	resp, err := Default().Lsim(context.Background(), firstOrder(), make([]float64, len(times)), times)
	if err != nil {
		t.Fatal(err)
	}
	for _, y := range resp.Outputs {
		if y != 0 {
			t.Fatalf("expected zero response, got %v", resp.Outputs)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = 0
	s := New(nil, cfg)
	if _, err := s.StepResponse(context.Background(), firstOrder(), []float64{0, 1}); err == nil {
		t.Error("expected config error")
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	times, _ := Grid(1, 0.01)
	_, err := Default().StepResponse(ctx, firstOrder(), times)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAdaptiveMatchesAnalytic(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Adaptive = true
	cfg.Tolerance = 1e-8
	s := New(func() dynamo.Integrator { return integrators.NewRK45() }, cfg)

	times, _ := Grid(5, 0.5)
	resp, err := s.StepResponse(context.Background(), firstOrder(), times)
	if err != nil {
		t.Fatal(err)
	}
	for i, tm := range resp.Times {
		want := 1 - math.Exp(-tm)
		if math.Abs(resp.Outputs[i]-want) > 1e-5 {
			t.Errorf("t=%.1f: got %.8f, want %.8f", tm, resp.Outputs[i], want)
		}
	}
}

func TestStiffModelUsesSubsteps(t *testing.T) {
	// pole at -1000 with a coarse grid would blow up a single RK4 step
	tf := lti.MustNew([]float64{1000}, []float64{1, 1000})
	times, _ := Grid(1, 0.1)
	resp, err := Default().StepResponse(context.Background(), tf, times)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(resp.Final()-1) > 1e-6 {
		t.Errorf("final: got %.8f, want 1", resp.Final())
	}
}

func TestConcurrentStepInfo(t *testing.T) {
	s := Default()
	tf := lti.MustNew([]float64{1}, []float64{1, 2, 1})

	want, err := s.StepInfo(context.Background(), tf)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]Info, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.StepInfo(context.Background(), tf)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("run %d: %v", i, errs[i])
		}
		if results[i] != want {
			t.Errorf("run %d: got %+v, want %+v", i, results[i], want)
		}
	}
}

func TestDefaultTimeGrid(t *testing.T) {
	tests := []struct {
		name    string
		tf      lti.TransferFunction
		wantEnd float64
	}{
		{"first order", firstOrder(), 7},
		{"slow pole", lti.MustNew([]float64{1}, []float64{10, 1}), 70},
		{"no dynamics", lti.MustNew([]float64{1}, []float64{1}), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, err := DefaultTimeGrid(tt.tf, 10)
			if err != nil {
				t.Fatal(err)
			}
			end := times[len(times)-1]
			if math.Abs(end-tt.wantEnd) > 1e-9 {
				t.Errorf("grid end: got %f, want %f", end, tt.wantEnd)
			}
			if len(times) < minGridPoints || len(times) > maxGridPoints {
				t.Errorf("grid size %d out of range", len(times))
			}
		})
	}
}
