package lti

import "math"

// Poly holds polynomial coefficients, highest degree first.
type Poly []float64

func (p Poly) Clone() Poly {
	c := make(Poly, len(p))
	copy(c, p)
	return c
}

// Trim drops leading zero coefficients. The zero polynomial trims to Poly{0}.
func (p Poly) Trim() Poly {
	if len(p) == 0 {
		return Poly{0}
	}
	i := 0
	for i < len(p)-1 && p[i] == 0 {
		i++
	}
	return p[i:].Clone()
}

func (p Poly) Degree() int {
	return len(p.Trim()) - 1
}

func (p Poly) IsZero() bool {
	for _, c := range p {
		if c != 0 {
			return false
		}
	}
	return true
}

func (p Poly) IsFinite() bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Mul is the coefficient convolution of p and q.
func (p Poly) Mul(q Poly) Poly {
	if len(p) == 0 || len(q) == 0 {
		return Poly{0}
	}
	out := make(Poly, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

// Add sums p and q aligned on the constant term.
func (p Poly) Add(q Poly) Poly {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Poly, n)
	for i := range p {
		out[n-len(p)+i] += p[i]
	}
	for i := range q {
		out[n-len(q)+i] += q[i]
	}
	return out
}

func (p Poly) Scale(k float64) Poly {
	out := make(Poly, len(p))
	for i, c := range p {
		out[i] = c * k
	}
	return out
}

// Eval evaluates p at x with Horner's scheme.
func (p Poly) Eval(x float64) float64 {
	acc := 0.0
	for _, c := range p {
		acc = acc*x + c
	}
	return acc
}

// trailingZeros counts the factors of s in p.
func (p Poly) trailingZeros() int {
	n := 0
	for i := len(p) - 1; i > 0 && p[i] == 0; i-- {
		n++
	}
	return n
}
