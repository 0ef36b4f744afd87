package ga

import "math/rand"

// crossover swaps the leading halves of two parents:
// a' = b[:mid] + a[mid:], b' = a[:mid] + b[mid:].
// The parents are left untouched.
func crossover(a, b Chromosome) (Chromosome, Chromosome) {
	mid := len(a) / 2

	childA := make(Chromosome, len(a))
	copy(childA, b[:mid])
	copy(childA[mid:], a[mid:])

	childB := make(Chromosome, len(b))
	copy(childB, a[:mid])
	copy(childB[mid:], b[mid:])

	return childA, childB
}

// mutate flips each bit in place with probability rate.
func mutate(c Chromosome, rate float64, rng *rand.Rand) {
	for i := range c {
		if rng.Float64() < rate {
			c[i] ^= 1
		}
	}
}
