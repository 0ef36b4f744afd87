package fitness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/san-kum/pidtune/internal/dynamo"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/sourcegraph/conc/pool"
)

// Evaluation is the outcome of scoring one gain vector. Err is set when the
// loop could not be simulated; Fitness then holds the failure fitness.
type Evaluation struct {
	Gains   []float64
	Fitness float64
	Err     error
}

func (e Evaluation) Failed() bool { return e.Err != nil }

// Evaluator closes a PID loop around a fixed plant and scores it.
type Evaluator struct {
	plant   lti.TransferFunction
	scorer  Scorer
	logger  *slog.Logger
	workers int
}

type Option func(*Evaluator)

func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds the goroutines used by EvaluateAll.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEvaluator(plant lti.TransferFunction, scorer Scorer, opts ...Option) *Evaluator {
	e := &Evaluator{
		plant:   plant,
		scorer:  scorer,
		logger:  slog.New(slog.DiscardHandler),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Plant() lti.TransferFunction { return e.plant }

// ClosedLoop is the unity-feedback loop of PID(kp, ki, kd) and the plant.
func (e *Evaluator) ClosedLoop(kp, ki, kd float64) lti.TransferFunction {
	return lti.CloseLoop(lti.PID(kp, ki, kd), e.plant)
}

// Evaluate scores one (Kp, Ki, Kd) vector.
func (e *Evaluator) Evaluate(ctx context.Context, gains []float64) Evaluation {
	ev := Evaluation{Gains: append([]float64(nil), gains...)}

	if len(gains) != 3 {
		return e.fail(ev, fmt.Errorf("%w: expected 3 gains, got %d", dynamo.ErrDimensionMismatch, len(gains)))
	}

	f, err := e.scorer.Score(ctx, e.ClosedLoop(gains[0], gains[1], gains[2]))
	if err != nil {
		return e.fail(ev, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return e.fail(ev, fmt.Errorf("%w: fitness %v", dynamo.ErrInvalidState, f))
	}

	ev.Fitness = f
	return ev
}

func (e *Evaluator) fail(ev Evaluation, err error) Evaluation {
	e.logger.Debug("simulation failed", "gains", ev.Gains, "error", err)
	ev.Err = err
	ev.Fitness = e.scorer.FailureFitness()
	return ev
}

// EvaluateAll scores every gain vector. Results land in a fresh slice in
// input order; the input is never touched by the workers.
func (e *Evaluator) EvaluateAll(ctx context.Context, genes [][]float64) []Evaluation {
	results := make([]Evaluation, len(genes))
	if len(genes) == 0 {
		return results
	}

	p := pool.New().WithMaxGoroutines(min(e.workers, len(genes)))
	for i, g := range genes {
		p.Go(func() {
			results[i] = e.Evaluate(ctx, g)
		})
	}
	p.Wait()

	return results
}
