package ga

import "math"

// Individual is one member of the population. Fitness is meaningful only
// when Evaluated is set.
type Individual struct {
	Chromosome Chromosome
	Genes      []float64
	Fitness    float64
	Evaluated  bool
	// Err records why evaluation failed, if it did.
	Err error
}

func (ind Individual) Clone() Individual {
	out := ind
	out.Chromosome = ind.Chromosome.Clone()
	out.Genes = append([]float64(nil), ind.Genes...)
	return out
}

// Population is order-stable: ties always resolve to the lowest index.
type Population []Individual

// Best returns the index of the fittest individual.
func (p Population) Best() int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i].Fitness > p[best].Fitness {
			best = i
		}
	}
	return best
}

// Parents returns the indices of the two fittest individuals.
func (p Population) Parents() (int, int) {
	first := p.Best()
	second := -1
	for i := range p {
		if i == first {
			continue
		}
		if second < 0 || p[i].Fitness > p[second].Fitness {
			second = i
		}
	}
	return first, second
}

// Replace puts each child into the slot of the current least-fit
// individual. A filled slot is marked +Inf so the next child lands
// elsewhere.
func (p Population) Replace(children ...Individual) {
	scores := make([]float64, len(p))
	for i := range p {
		scores[i] = p[i].Fitness
	}
	for _, child := range children {
		worst := 0
		for i := 1; i < len(scores); i++ {
			if scores[i] < scores[worst] {
				worst = i
			}
		}
		p[worst] = child
		scores[worst] = math.Inf(1)
	}
}

func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i := range p {
		out[i] = p[i].Clone()
	}
	return out
}
