package pso

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/pidtune/internal/fitness"
)

// Evaluator scores positions. Results come back in input order.
type Evaluator interface {
	EvaluateAll(ctx context.Context, genes [][]float64) []fitness.Evaluation
}

// Record is the per-generation snapshot handed to observers.
type Record struct {
	Generation  int
	Best        []float64
	BestFitness float64
}

type Result struct {
	Best        []float64
	BestFitness float64
	// History holds the global best position after each generation.
	History        [][]float64
	FitnessHistory []float64
	Particles      []Particle
	Generations    int
	Evaluations    int
	Duration       time.Duration
}

// Gains returns the best (Kp, Ki, Kd). Missing coordinates read as zero.
func (r *Result) Gains() (kp, ki, kd float64) {
	g := make([]float64, 3)
	copy(g, r.Best)
	return g[0], g[1], g[2]
}

// Engine runs a global-best particle swarm for a fixed number of
// generations.
type Engine struct {
	cfg      Config
	eval     Evaluator
	rng      *rand.Rand
	logger   *slog.Logger
	observer func(Record)
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithObserver(fn func(Record)) Option {
	return func(e *Engine) { e.observer = fn }
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func New(cfg Config, eval Evaluator, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidConfig)
	}
	cfg.Bounds = append([]Range(nil), cfg.Bounds...)

	e := &Engine{
		cfg:    cfg,
		eval:   eval,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Run evaluates and moves the swarm for cfg.Generations generations. The
// global best lives in the run's own swarm and starts at -Inf every call.
// On cancellation it returns the best found so far with ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	sw := newSwarm(e.cfg, e.rng)
	res := &Result{}
	finish := func() *Result {
		res.Best = clone(sw.best)
		res.BestFitness = sw.bestScore
		res.Particles = make([]Particle, len(sw.particles))
		for i, p := range sw.particles {
			res.Particles[i] = p.Clone()
		}
		res.Duration = time.Since(start)
		return res
	}

	positions := make([][]float64, len(sw.particles))
	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		for i := range sw.particles {
			positions[i] = clone(sw.particles[i].Position)
		}
		evals := e.eval.EvaluateAll(ctx, positions)
		if len(evals) != len(positions) {
			return finish(), fmt.Errorf("pso: evaluator returned %d results for %d particles", len(evals), len(positions))
		}
		for i, ev := range evals {
			sw.record(i, ev.Fitness)
		}
		res.Evaluations += len(evals)

		for i := range sw.particles {
			r1, r2 := e.rng.Float64(), e.rng.Float64()
			move(&sw.particles[i], sw.best, e.cfg, r1, r2)
		}

		rec := Record{Generation: gen, Best: clone(sw.best), BestFitness: sw.bestScore}
		res.History = append(res.History, rec.Best)
		res.FitnessHistory = append(res.FitnessHistory, rec.BestFitness)
		res.Generations = gen + 1

		e.logger.Info("generation", "generation", gen, "best", rec.Best, "fitness", rec.BestFitness)
		if e.observer != nil {
			e.observer(rec)
		}
	}

	return finish(), nil
}
