package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/pidtune/internal/fitness"
)

var ErrEmptyGrid = errors.New("optim: empty grid")

// Evaluator scores gain vectors. Results come back in input order.
type Evaluator interface {
	EvaluateAll(ctx context.Context, genes [][]float64) []fitness.Evaluation
}

// GridSearch exhaustively scores every combination of per-gain values.
type GridSearch struct {
	ranges [][]float64
}

// Result is the best point found. Ties keep the first combination in
// enumeration order.
type Result struct {
	Best        []float64
	BestFitness float64
	Evaluations int
	Failures    int
}

func NewGridSearch(ranges [][]float64) (*GridSearch, error) {
	if len(ranges) == 0 {
		return nil, ErrEmptyGrid
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: axis %d has no values", ErrEmptyGrid, i)
		}
	}
	return &GridSearch{ranges: ranges}, nil
}

// Linspace returns n evenly spaced values over [low, high].
func Linspace(low, high float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{low}
	}
	out := make([]float64, n)
	step := (high - low) / float64(n-1)
	for i := range out {
		out[i] = low + float64(i)*step
	}
	out[n-1] = high
	return out
}

func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (*Result, error) {
	combos := make([][]float64, 0, g.Size())
	g.searchRecursive(0, make([]float64, 0, len(g.ranges)), &combos)

	evals := eval.EvaluateAll(ctx, combos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{BestFitness: math.Inf(-1), Evaluations: len(evals)}
	for i, ev := range evals {
		if ev.Failed() {
			res.Failures++
			continue
		}
		if ev.Fitness > res.BestFitness {
			res.BestFitness = ev.Fitness
			res.Best = combos[i]
		}
	}
	if res.Best == nil {
		return res, fmt.Errorf("optim: all %d grid points failed", len(evals))
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(depth int, current []float64, out *[][]float64) {
	if depth == len(g.ranges) {
		combo := make([]float64, len(current))
		copy(combo, current)
		*out = append(*out, combo)
		return
	}
	for _, val := range g.ranges[depth] {
		g.searchRecursive(depth+1, append(current, val), out)
	}
}
