package ga

import (
	"fmt"
	"math"
	"math/rand"
)

// Bounds is the closed interval [Low, High] every decoded gene lies in.
type Bounds struct {
	Low  float64
	High float64
}

// Validate rejects reversed or non-finite bounds. Reversed bounds are never
// swapped silently.
func (b Bounds) Validate() error {
	if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsInf(b.Low, 0) || math.IsInf(b.High, 0) {
		return fmt.Errorf("%w: bounds must be finite, got [%g, %g]", ErrInvalidConfig, b.Low, b.High)
	}
	if b.Low > b.High {
		return fmt.Errorf("%w: lower bound %g exceeds upper bound %g", ErrInvalidConfig, b.Low, b.High)
	}
	return nil
}

func (b Bounds) clamp(v float64) float64 {
	return math.Max(b.Low, math.Min(b.High, v))
}

// Chromosome is a bit string; every element is 0 or 1.
type Chromosome []uint8

func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

// maxBits keeps every level exactly representable in a float64 mantissa.
const maxBits = 52

// Codec maps chromosomes of NVars slices, NBits each, to gene vectors and
// back. Slices are read most significant bit first.
type Codec struct {
	nVars  int
	nBits  int
	bounds Bounds
	levels float64
}

func NewCodec(nVars, nBits int, bounds Bounds) (*Codec, error) {
	if nVars <= 0 {
		return nil, fmt.Errorf("%w: n_vars must be positive, got %d", ErrInvalidConfig, nVars)
	}
	if nBits <= 0 || nBits > maxBits {
		return nil, fmt.Errorf("%w: n_bits must be in [1, %d], got %d", ErrInvalidConfig, maxBits, nBits)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Codec{
		nVars:  nVars,
		nBits:  nBits,
		bounds: bounds,
		levels: float64(uint64(1)<<nBits - 1),
	}, nil
}

// Len is the chromosome length, NVars*NBits.
func (c *Codec) Len() int { return c.nVars * c.nBits }

func (c *Codec) Bounds() Bounds { return c.bounds }

// Decode maps a chromosome to its gene vector. It is a pure function of its
// input.
func (c *Codec) Decode(ch Chromosome) ([]float64, error) {
	if len(ch) != c.Len() {
		return nil, fmt.Errorf("%w: chromosome length %d, want %d", ErrInvalidConfig, len(ch), c.Len())
	}

	genes := make([]float64, c.nVars)
	span := c.bounds.High - c.bounds.Low
	for v := range genes {
		var n uint64
		for _, bit := range ch[v*c.nBits : (v+1)*c.nBits] {
			if bit > 1 {
				return nil, fmt.Errorf("%w: bit value %d", ErrInvalidConfig, bit)
			}
			n = n<<1 | uint64(bit)
		}
		genes[v] = c.bounds.clamp(c.bounds.Low + span*float64(n)/c.levels)
	}
	return genes, nil
}

// Encode is the inverse of Decode. Genes are clamped to the bounds and
// rounded to the nearest representable level.
func (c *Codec) Encode(genes []float64) (Chromosome, error) {
	if len(genes) != c.nVars {
		return nil, fmt.Errorf("%w: %d genes, want %d", ErrInvalidConfig, len(genes), c.nVars)
	}

	ch := make(Chromosome, c.Len())
	span := c.bounds.High - c.bounds.Low
	for v, g := range genes {
		var n uint64
		if span > 0 && !math.IsNaN(g) {
			n = uint64(math.Round((c.bounds.clamp(g) - c.bounds.Low) / span * c.levels))
		}
		slice := ch[v*c.nBits : (v+1)*c.nBits]
		for i := c.nBits - 1; i >= 0; i-- {
			slice[i] = uint8(n & 1)
			n >>= 1
		}
	}
	return ch, nil
}

// Random draws every bit independently and uniformly.
func (c *Codec) Random(rng *rand.Rand) Chromosome {
	ch := make(Chromosome, c.Len())
	for i := range ch {
		ch[i] = uint8(rng.Intn(2))
	}
	return ch
}

// Decode is the one-shot form of Codec.Decode with bounds given as
// (low, high).
func Decode(ch Chromosome, nVars, nBits int, low, high float64) ([]float64, error) {
	c, err := NewCodec(nVars, nBits, Bounds{Low: low, High: high})
	if err != nil {
		return nil, err
	}
	return c.Decode(ch)
}
