package lti

import (
	"fmt"

	"github.com/san-kum/pidtune/internal/dynamo"
)

// StateSpace is the controllable canonical realization of a proper transfer
// function:
//
//	x'_i = x_{i+1}                       i < n
//	x'_n = -a_n x_1 - ... - a_1 x_n + u
//	y    = c . x + d u
type StateSpace struct {
	a []float64 // monic denominator tail a_1..a_n
	c []float64
	d float64
}

// Realize builds the state-space form of tf after origin cancellation.
func (tf TransferFunction) Realize() (*StateSpace, error) {
	m := tf.CancelOrigin()
	if !m.IsProper() {
		return nil, fmt.Errorf("%w: improper model %s", dynamo.ErrInvalidModel, m)
	}

	lead := m.den[0]
	n := len(m.den) - 1
	a := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = m.den[i+1] / lead
	}

	b := make([]float64, n+1)
	off := n + 1 - len(m.num)
	for i, c := range m.num {
		b[off+i] = c / lead
	}

	d := b[0]
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		// coefficient of s^i left after removing the feedthrough
		c[i] = b[n-i] - d*coefAt(a, n-i)
	}

	return &StateSpace{a: a, c: c, d: d}, nil
}

// coefAt returns a_k with a_0 = 1 implied.
func coefAt(a []float64, k int) float64 {
	if k == 0 {
		return 1
	}
	return a[k-1]
}

func (s *StateSpace) StateDim() int { return len(s.a) }

func (s *StateSpace) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := len(s.a)
	dx := make(dynamo.State, n)
	if n == 0 {
		return dx
	}
	for i := 0; i < n-1; i++ {
		dx[i] = x[i+1]
	}
	acc := 0.0
	if len(u) > 0 {
		acc = u[0]
	}
	for i := 0; i < n; i++ {
		acc -= s.a[n-1-i] * x[i]
	}
	dx[n-1] = acc
	return dx
}

func (s *StateSpace) Output(x dynamo.State, u dynamo.Control) float64 {
	y := 0.0
	for i, c := range s.c {
		y += c * x[i]
	}
	if len(u) > 0 {
		y += s.d * u[0]
	}
	return y
}
