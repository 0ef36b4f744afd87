package pso

import (
	"math"
	"math/rand"
)

type Particle struct {
	Position     []float64
	Velocity     []float64
	BestPosition []float64
	BestScore    float64
}

func (p Particle) Clone() Particle {
	return Particle{
		Position:     clone(p.Position),
		Velocity:     clone(p.Velocity),
		BestPosition: clone(p.BestPosition),
		BestScore:    p.BestScore,
	}
}

// swarm is the state of one run. It is created by Run and dropped when the
// run returns.
type swarm struct {
	particles []Particle
	best      []float64
	bestScore float64
}

func newSwarm(cfg Config, rng *rand.Rand) *swarm {
	s := &swarm{
		particles: make([]Particle, cfg.Particles),
		bestScore: math.Inf(-1),
	}
	for i := range s.particles {
		pos := make([]float64, len(cfg.Bounds))
		for d, r := range cfg.Bounds {
			pos[d] = r.Low + rng.Float64()*(r.High-r.Low)
		}
		s.particles[i] = Particle{
			Position:     pos,
			Velocity:     make([]float64, len(pos)),
			BestPosition: clone(pos),
			BestScore:    math.Inf(-1),
		}
	}
	return s
}

// record updates personal and global bests. Only strictly better scores
// replace a best.
func (s *swarm) record(i int, score float64) {
	p := &s.particles[i]
	if score > p.BestScore {
		p.BestScore = score
		p.BestPosition = clone(p.Position)
	}
	if score > s.bestScore {
		s.bestScore = score
		s.best = clone(p.Position)
	}
}

// move applies v = w*v + c1*r1*(pbest-x) + c2*r2*(gbest-x), then x += v,
// clipped to bounds. Before any global best exists the social term is zero.
func move(p *Particle, gbest []float64, cfg Config, r1, r2 float64) {
	for d := range p.Position {
		social := 0.0
		if gbest != nil {
			social = cfg.C2 * r2 * (gbest[d] - p.Position[d])
		}
		v := cfg.W*p.Velocity[d] + cfg.C1*r1*(p.BestPosition[d]-p.Position[d]) + social
		if cfg.VMax > 0 {
			v = math.Max(-cfg.VMax, math.Min(cfg.VMax, v))
		}
		p.Velocity[d] = v
		p.Position[d] = cfg.Bounds[d].clamp(p.Position[d] + v)
	}
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}
