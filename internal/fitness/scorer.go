package fitness

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/sim"
)

// Scorer rates a closed-loop model. FailureFitness is what a candidate gets
// when Score errors.
type Scorer interface {
	Score(ctx context.Context, closedLoop lti.TransferFunction) (float64, error)
	FailureFitness() float64
}

// MetricsScore rates the step-response characteristics of a loop.
type MetricsScore struct {
	sim *sim.Simulator
	fn  MetricsFunc
}

// NewMetricsScore scores with fn, or Composite when fn is nil.
func NewMetricsScore(s *sim.Simulator, fn MetricsFunc) *MetricsScore {
	if fn == nil {
		fn = Composite
	}
	return &MetricsScore{sim: s, fn: fn}
}

func (m *MetricsScore) Score(ctx context.Context, closedLoop lti.TransferFunction) (float64, error) {
	info, err := m.sim.StepInfo(ctx, closedLoop)
	if err != nil {
		return 0, err
	}
	return m.fn(info), nil
}

func (m *MetricsScore) FailureFitness() float64 { return 0 }

// TrajectoryScore simulates a unit step on a fixed grid and returns the
// negated cost against a constant setpoint.
type TrajectoryScore struct {
	sim      *sim.Simulator
	cost     CostFunc
	times    []float64
	setpoint []float64
}

func NewTrajectoryScore(s *sim.Simulator, cost CostFunc, times []float64, setpoint float64) (*TrajectoryScore, error) {
	if cost == nil {
		return nil, fmt.Errorf("fitness: nil cost function")
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("fitness: time grid needs at least two points, got %d", len(times))
	}
	sp := make([]float64, len(times))
	for i := range sp {
		sp[i] = setpoint
	}
	return &TrajectoryScore{
		sim:      s,
		cost:     cost,
		times:    append([]float64(nil), times...),
		setpoint: sp,
	}, nil
}

func (t *TrajectoryScore) Score(ctx context.Context, closedLoop lti.TransferFunction) (float64, error) {
	resp, err := t.sim.StepResponse(ctx, closedLoop, t.times)
	if err != nil {
		return 0, err
	}
	c, err := t.cost(t.setpoint, resp.Outputs)
	if err != nil {
		return 0, err
	}
	return -c, nil
}

// FailureFitness is the lowest finite fitness, so a failed candidate still
// ranks above the -Inf initial best of a swarm.
func (t *TrajectoryScore) FailureFitness() float64 { return -math.MaxFloat64 }
