package pso_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidtune/internal/fitness"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/pso"
	"github.com/san-kum/pidtune/internal/sim"
)

var _ = Describe("Engine", func() {
	var evaluator *fitness.Evaluator

	BeforeEach(func() {
		s := sim.Default()
		times, err := sim.Grid(5, 0.05)
		Expect(err).NotTo(HaveOccurred())

		scorer, err := fitness.NewTrajectoryScore(s, fitness.ITAE(0.05), times, 1)
		Expect(err).NotTo(HaveOccurred())

		plant := lti.MustNew([]float64{1}, []float64{1, 1})
		evaluator = fitness.NewEvaluator(plant, scorer)
	})

	It("improves the negated cost on a first-order lag", func() {
		cfg := pso.DefaultConfig()
		cfg.Particles = 10
		cfg.Generations = 15

		engine, err := pso.New(cfg, evaluator)
		Expect(err).NotTo(HaveOccurred())

		res, err := engine.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.History).To(HaveLen(15))
		Expect(res.BestFitness).To(BeNumerically("<=", 0))
		Expect(res.BestFitness).To(BeNumerically(">=", res.FitnessHistory[0]))
		Expect(res.Best).To(HaveLen(3))
		for d, g := range res.Best {
			Expect(g).To(BeNumerically(">=", cfg.Bounds[d].Low))
			Expect(g).To(BeNumerically("<=", cfg.Bounds[d].High))
		}
	})

	It("is reproducible for a fixed seed", func() {
		cfg := pso.DefaultConfig()
		cfg.Particles = 6
		cfg.Generations = 5
		cfg.Seed = 99

		run := func() *pso.Result {
			engine, err := pso.New(cfg, evaluator)
			Expect(err).NotTo(HaveOccurred())
			res, err := engine.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			return res
		}

		Expect(run().Best).To(Equal(run().Best))
	})

	It("rejects reversed bounds before running", func() {
		cfg := pso.DefaultConfig()
		cfg.Bounds = []pso.Range{{Low: 1, High: 0}, {Low: 0, High: 1}, {Low: 0, High: 1}}

		_, err := pso.New(cfg, evaluator)
		Expect(err).To(MatchError(pso.ErrInvalidConfig))
	})
})
