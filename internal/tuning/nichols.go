package tuning

import (
	"context"
	"fmt"

	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/sim"
)

// NicholsBlack reads Ku and Tu off the open-loop step response of plant:
// Ku is the reciprocal of the first sample above 1 (1 when the response
// never crosses), Tu is the time of the peak. A nil grid uses
// sim.DefaultTimeGrid.
func NicholsBlack(ctx context.Context, s *sim.Simulator, plant lti.TransferFunction, times []float64) (Gains, error) {
	resp, err := s.StepResponse(ctx, plant, times)
	if err != nil {
		return Gains{}, fmt.Errorf("plant step response: %w", err)
	}
	y := resp.Outputs

	ku := 1.0
	for i := 0; i+1 < len(y); i++ {
		if y[i] < 1 && y[i+1] > 1 {
			ku = 1 / y[i+1]
			break
		}
	}

	peak := 0
	for i := range y {
		if y[i] > y[peak] {
			peak = i
		}
	}
	return ZieglerNichols(ku, resp.Times[peak])
}
