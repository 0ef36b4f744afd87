package ga

import "time"

// Record is the per-generation snapshot handed to observers.
type Record struct {
	Generation  int
	Best        []float64
	BestFitness float64
}

type Result struct {
	Best Individual
	// Population is the final population.
	Population Population
	History    []Record
	// Converged is false when the run stopped on MaxGenerations or
	// cancellation before exceeding the target fitness.
	Converged   bool
	Generations int
	Evaluations int
	Duration    time.Duration
}

// Gains returns the best (Kp, Ki, Kd). Missing genes read as zero.
func (r *Result) Gains() (kp, ki, kd float64) {
	g := make([]float64, 3)
	copy(g, r.Best.Genes)
	return g[0], g[1], g[2]
}

// GeneHistory is gene i of the best individual, one entry per generation.
func (r *Result) GeneHistory(i int) []float64 {
	out := make([]float64, len(r.History))
	for k, rec := range r.History {
		if i < len(rec.Best) {
			out[k] = rec.Best[i]
		}
	}
	return out
}

func (r *Result) KpHistory() []float64 { return r.GeneHistory(0) }
func (r *Result) KiHistory() []float64 { return r.GeneHistory(1) }
func (r *Result) KdHistory() []float64 { return r.GeneHistory(2) }

func (r *Result) FitnessHistory() []float64 {
	out := make([]float64, len(r.History))
	for k, rec := range r.History {
		out[k] = rec.BestFitness
	}
	return out
}
