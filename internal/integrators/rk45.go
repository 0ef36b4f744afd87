package integrators

import (
	"math"

	"github.com/san-kum/pidtune/internal/dynamo"
)

// Dormand-Prince 5(4) tableau.
var (
	dpNodes = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpCoupling = [6][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
	}

	// fifth-order weights; k2 does not contribute
	dpWeights = [6]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0}

	// difference between fifth- and fourth-order weights, k7 last
	dpErr = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// RK45 is the Dormand-Prince embedded pair. Step uses a fixed dt, StepAdaptive
// also returns the suggested next dt for the requested tolerance.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _, _ := r.StepAdaptive(dyn, x, u, t, dt, 1e-6)
	return newX
}

func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	n := len(x)
	var k [7]dynamo.State

	k[0] = dyn.Derive(x, u, t)
	tmp := make(dynamo.State, n)
	for s := 1; s < 6; s++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, a := range dpCoupling[s] {
				acc += a * k[j][i]
			}
			tmp[i] = x[i] + dt*acc
		}
		k[s] = dyn.Derive(tmp, u, t+dpNodes[s]*dt)
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for s, b := range dpWeights {
			acc += b * k[s][i]
		}
		xNew[i] = x[i] + dt*acc
	}
	if !xNew.IsValid() {
		return xNew, dt * r.minScale, dynamo.ErrInvalidState
	}

	k[6] = dyn.Derive(xNew, u, t+dt)

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := 0.0
		for s, e := range dpErr {
			est += e * k[s][i]
		}
		scale := 1 + math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	errRatio := errMax / tol

	var dtNew float64
	switch {
	case errRatio > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		dtNew = dt * r.maxScale
	}

	return xNew, dtNew, nil
}
