package ga

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/pidtune/internal/fitness"
)

// Evaluator scores gene vectors. Results come back in input order.
type Evaluator interface {
	EvaluateAll(ctx context.Context, genes [][]float64) []fitness.Evaluation
}

// Engine is an elitist steady-state genetic algorithm: each generation the
// two fittest individuals breed two children that replace the two least fit.
type Engine struct {
	cfg      Config
	codec    *Codec
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

// WithObserver registers fn to be called once per generation, on the
// goroutine running the engine.
func WithObserver(fn func(Record)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithRand replaces the Seed-derived generator.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// New validates cfg and fails before any generation runs.
func New(cfg Config, eval Evaluator, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("%w: nil evaluator", ErrInvalidConfig)
	}
	codec, err := NewCodec(cfg.NVars, cfg.NBits, cfg.Bounds)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		codec:  codec,
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

func (e *Engine) Codec() *Codec { return e.codec }

// Run evolves the population until the best fitness exceeds the target,
// MaxGenerations is reached, or ctx is done. On cancellation it returns the
// best individual found so far together with ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	pop, err := e.initPopulation(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Evaluations: len(pop)}
	finish := func() *Result {
		res.Best = pop[pop.Best()].Clone()
		res.Population = pop
		res.Duration = time.Since(start)
		return res
	}

	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		n, err := e.step(ctx, pop)
		if err != nil {
			return finish(), err
		}
		res.Evaluations += n
		res.Generations = gen + 1

		best := pop[pop.Best()]
		rec := Record{
			Generation:  gen,
			Best:        append([]float64(nil), best.Genes...),
			BestFitness: best.Fitness,
		}
		res.History = append(res.History, rec)
		e.logger.Info("generation", "generation", gen, "best", rec.Best, "fitness", rec.BestFitness)
		if e.observer != nil {
			e.observer(rec)
		}

		if best.Fitness > e.cfg.TargetFitness {
			res.Converged = true
			break
		}
		if e.cfg.MaxGenerations > 0 && res.Generations >= e.cfg.MaxGenerations {
			e.logger.Warn("target fitness not reached",
				"generations", res.Generations, "target", e.cfg.TargetFitness, "best", best.Fitness)
			break
		}
	}

	return finish(), nil
}

func (e *Engine) initPopulation(ctx context.Context) (Population, error) {
	pop := make(Population, e.cfg.PopulationSize)
	for i := range pop {
		pop[i].Chromosome = e.codec.Random(e.rng)
	}
	if err := e.evaluate(ctx, pop); err != nil {
		return nil, err
	}
	return pop, nil
}

// step runs one generation in place and reports how many candidates were
// evaluated.
func (e *Engine) step(ctx context.Context, pop Population) (int, error) {
	p1, p2 := pop.Parents()

	childA, childB := crossover(pop[p1].Chromosome, pop[p2].Chromosome)
	mutate(childA, e.cfg.MutationRate, e.rng)
	mutate(childB, e.cfg.MutationRate, e.rng)

	children := Population{{Chromosome: childA}, {Chromosome: childB}}
	if err := e.evaluate(ctx, children); err != nil {
		return 0, err
	}

	pop.Replace(children...)
	return len(children), nil
}

// evaluate decodes and scores every individual of pop. Scores are computed
// into a scratch slice and merged afterwards.
func (e *Engine) evaluate(ctx context.Context, pop Population) error {
	genes := make([][]float64, len(pop))
	for i := range pop {
		g, err := e.codec.Decode(pop[i].Chromosome)
		if err != nil {
			return err
		}
		genes[i] = g
	}

	evals := e.eval.EvaluateAll(ctx, genes)
	if len(evals) != len(pop) {
		return fmt.Errorf("ga: evaluator returned %d results for %d candidates", len(evals), len(pop))
	}

	for i, ev := range evals {
		pop[i].Genes = genes[i]
		pop[i].Fitness = ev.Fitness
		pop[i].Evaluated = true
		pop[i].Err = ev.Err
	}
	return nil
}
