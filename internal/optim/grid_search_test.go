package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pidtune/internal/fitness"
)

type bowl struct {
	calls int
}

func (b *bowl) EvaluateAll(_ context.Context, genes [][]float64) []fitness.Evaluation {
	b.calls++
	out := make([]fitness.Evaluation, len(genes))
	for i, g := range genes {
		out[i].Gains = g
		if g[0] < 0 {
			out[i].Err = errors.New("negative gain")
			out[i].Fitness = 0
			continue
		}
		d := 0.0
		for j, v := range g {
			target := float64(j + 1)
			d += (v - target) * (v - target)
		}
		out[i].Fitness = -d
	}
	return out
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 10, 5)
	want := []float64{0, 2.5, 5, 7.5, 10}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: got %g, want %g", i, got[i], want[i])
		}
	}
	if Linspace(0, 1, 0) != nil {
		t.Error("expected nil for n=0")
	}
	if one := Linspace(3, 9, 1); len(one) != 1 || one[0] != 3 {
		t.Errorf("n=1: got %v", one)
	}
}

func TestGridSearch(t *testing.T) {
	g, err := NewGridSearch([][]float64{
		{-1, 0, 1, 2},
		{0, 1, 2, 3},
		{0, 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 32 {
		t.Fatalf("size: got %d, want 32", g.Size())
	}

	b := &bowl{}
	res, err := g.Search(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if b.calls != 1 {
		t.Errorf("expected one batch, got %d", b.calls)
	}
	if res.Evaluations != 32 || res.Failures != 8 {
		t.Errorf("evaluations %d failures %d", res.Evaluations, res.Failures)
	}
	want := []float64{1, 2, 3}
	for i := range want {
		if res.Best[i] != want[i] {
			t.Fatalf("best: got %v, want %v", res.Best, want)
		}
	}
	if res.BestFitness != 0 {
		t.Errorf("best fitness: got %g", res.BestFitness)
	}
}

func TestGridSearchTiesKeepFirst(t *testing.T) {
	g, _ := NewGridSearch([][]float64{{0, 2}, {2}, {3}})
	res, err := g.Search(context.Background(), &bowl{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Best[0] != 0 {
		t.Errorf("expected first of tied points, got %v", res.Best)
	}
}

func TestGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch(nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("nil grid: got %v", err)
	}
	if _, err := NewGridSearch([][]float64{{1}, {}}); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("empty axis: got %v", err)
	}

	g, _ := NewGridSearch([][]float64{{-2, -1}, {0}, {0}})
	if _, err := g.Search(context.Background(), &bowl{}); err == nil {
		t.Error("expected error when every point fails")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g, _ = NewGridSearch([][]float64{{1}, {2}, {3}})
	if _, err := g.Search(ctx, &bowl{}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: got %v", err)
	}
}
