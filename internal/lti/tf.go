package lti

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/pidtune/internal/dynamo"
)

// TransferFunction is a rational model num(s)/den(s). Values are immutable:
// every operation returns a new TransferFunction.
type TransferFunction struct {
	num Poly
	den Poly
}

// New copies and trims the coefficients. It rejects empty, non-finite and
// zero-denominator models; improper models are allowed (a PID compensator is
// one) and only fail at realization time.
func New(num, den []float64) (TransferFunction, error) {
	if len(num) == 0 || len(den) == 0 {
		return TransferFunction{}, fmt.Errorf("%w: empty numerator or denominator", dynamo.ErrInvalidModel)
	}
	n, d := Poly(num), Poly(den)
	if !n.IsFinite() || !d.IsFinite() {
		return TransferFunction{}, fmt.Errorf("%w: non-finite coefficient", dynamo.ErrInvalidModel)
	}
	if d.IsZero() {
		return TransferFunction{}, fmt.Errorf("%w: zero denominator", dynamo.ErrInvalidModel)
	}
	return TransferFunction{num: n.Trim(), den: d.Trim()}, nil
}

// MustNew is New for literal models known to be valid.
func MustNew(num, den []float64) TransferFunction {
	tf, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return tf
}

func (tf TransferFunction) Num() Poly { return tf.num.Clone() }
func (tf TransferFunction) Den() Poly { return tf.den.Clone() }

func (tf TransferFunction) IsProper() bool {
	return tf.num.Degree() <= tf.den.Degree()
}

func (tf TransferFunction) String() string {
	return fmt.Sprintf("%s / %s", formatPoly(tf.num), formatPoly(tf.den))
}

func formatPoly(p Poly) string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = fmt.Sprintf("%g", c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// PID builds the ideal parallel compensator (kd s^2 + kp s + ki) / s.
func PID(kp, ki, kd float64) TransferFunction {
	return TransferFunction{
		num: Poly{kd, kp, ki}.Trim(),
		den: Poly{1, 0},
	}
}

// Series is the cascade a(s) * b(s).
func Series(a, b TransferFunction) TransferFunction {
	return TransferFunction{
		num: a.num.Mul(b.num).Trim(),
		den: a.den.Mul(b.den).Trim(),
	}
}

// Feedback closes g with unity negative feedback: num / (den + num).
func Feedback(g TransferFunction) TransferFunction {
	return TransferFunction{
		num: g.num.Clone(),
		den: g.den.Add(g.num).Trim(),
	}
}

// CloseLoop is Feedback(Series(controller, plant)).
func CloseLoop(controller, plant TransferFunction) TransferFunction {
	return Feedback(Series(controller, plant))
}

// CancelOrigin removes factors of s shared by numerator and denominator. The
// PID integrator pole and a plant zero at the origin cancel this way; no
// other pole-zero cancellation is attempted.
func (tf TransferFunction) CancelOrigin() TransferFunction {
	if tf.num.IsZero() {
		return tf
	}
	k := tf.num.trailingZeros()
	if dk := tf.den.trailingZeros(); dk < k {
		k = dk
	}
	if k == 0 {
		return tf
	}
	return TransferFunction{
		num: tf.num[:len(tf.num)-k].Clone(),
		den: tf.den[:len(tf.den)-k].Clone(),
	}
}

// DCGain is num(0)/den(0) after origin cancellation. A remaining pole at the
// origin yields +/-Inf.
func (tf TransferFunction) DCGain() float64 {
	m := tf.CancelOrigin()
	n := m.num[len(m.num)-1]
	d := m.den[len(m.den)-1]
	if d == 0 {
		if n == 0 {
			return 0
		}
		return math.Inf(int(math.Copysign(1, n)))
	}
	return n / d
}

// Poles returns the roots of the denominator, computed as eigenvalues of its
// companion matrix.
func (tf TransferFunction) Poles() ([]complex128, error) {
	return roots(tf.den)
}

// Zeros returns the roots of the numerator.
func (tf TransferFunction) Zeros() ([]complex128, error) {
	if tf.num.IsZero() {
		return nil, nil
	}
	return roots(tf.num)
}

func roots(p Poly) ([]complex128, error) {
	p = p.Trim()
	n := len(p) - 1
	if n < 1 {
		return nil, nil
	}
	lead := p[0]
	companion := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		companion.Set(0, j, -p[j+1]/lead)
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: eigen decomposition did not converge", dynamo.ErrInvalidModel)
	}
	return eig.Values(nil), nil
}

// marginTol is the relative distance from the imaginary axis below which a
// pole counts as marginal, hence unstable.
const marginTol = 1e-9

// IsStable reports whether every pole lies strictly in the left half plane.
func (tf TransferFunction) IsStable() (bool, error) {
	poles, err := tf.CancelOrigin().Poles()
	if err != nil {
		return false, err
	}
	for _, p := range poles {
		if cmplx.IsNaN(p) || real(p) >= -marginTol*math.Max(1, cmplx.Abs(p)) {
			return false, nil
		}
	}
	return true, nil
}
