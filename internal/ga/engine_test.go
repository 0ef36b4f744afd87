package ga_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidtune/internal/fitness"
	"github.com/san-kum/pidtune/internal/ga"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/sim"
)

var _ = Describe("Engine", func() {
	var (
		ctx       context.Context
		evaluator *fitness.Evaluator
	)

	BeforeEach(func() {
		ctx = context.Background()
		plant := lti.MustNew([]float64{1}, []float64{1, 1})
		evaluator = fitness.NewEvaluator(plant, fitness.NewMetricsScore(sim.Default(), nil), fitness.WithWorkers(2))
	})

	Context("with a trivially low target", func() {
		It("stops after the first generation", func() {
			cfg := ga.DefaultConfig()
			cfg.PopulationSize = 10
			cfg.NBits = 4
			cfg.Bounds = ga.Bounds{Low: 0, High: 10}
			cfg.TargetFitness = 0

			engine, err := ga.New(cfg, evaluator)
			Expect(err).NotTo(HaveOccurred())

			res, err := engine.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Generations).To(Equal(1))
			Expect(res.History).To(HaveLen(1))
			Expect(res.Population).To(HaveLen(10))
		})
	})

	Context("on a first-order lag", func() {
		It("finds gains with integral action above the default target", func() {
			cfg := ga.DefaultConfig()
			cfg.MaxGenerations = 100

			engine, err := ga.New(cfg, evaluator)
			Expect(err).NotTo(HaveOccurred())

			res, err := engine.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeTrue())
			Expect(res.Best.Fitness).To(BeNumerically(">", cfg.TargetFitness))

			_, ki, _ := res.Gains()
			Expect(ki).To(BeNumerically(">", 0))
		})
	})

	Context("across generations", func() {
		var records []ga.Record

		BeforeEach(func() {
			records = nil
			cfg := ga.DefaultConfig()
			cfg.PopulationSize = 8
			cfg.NBits = 6
			cfg.MutationRate = 0.2
			cfg.TargetFitness = math.Inf(1)
			cfg.MaxGenerations = 40

			engine, err := ga.New(cfg, evaluator, ga.WithObserver(func(r ga.Record) {
				records = append(records, r)
			}))
			Expect(err).NotTo(HaveOccurred())

			res, err := engine.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged).To(BeFalse())
			Expect(res.Population).To(HaveLen(cfg.PopulationSize))
		})

		It("reports every generation in order", func() {
			Expect(records).To(HaveLen(40))
			for i, r := range records {
				Expect(r.Generation).To(Equal(i))
				Expect(r.Best).To(HaveLen(3))
			}
		})

		It("never lets the best fitness drop", func() {
			for i := 1; i < len(records); i++ {
				Expect(records[i].BestFitness).To(BeNumerically(">=", records[i-1].BestFitness))
			}
		})

		It("keeps every gain inside the bounds", func() {
			for _, r := range records {
				for _, g := range r.Best {
					Expect(g).To(BeNumerically(">=", 0))
					Expect(g).To(BeNumerically("<=", 10))
				}
			}
		})
	})

	It("fails fast on reversed bounds", func() {
		cfg := ga.DefaultConfig()
		cfg.Bounds = ga.Bounds{Low: 10, High: 0}

		_, err := ga.New(cfg, evaluator)
		Expect(err).To(MatchError(ga.ErrInvalidConfig))
	})
})
