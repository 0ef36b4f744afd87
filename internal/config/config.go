package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidtune/internal/dynamo"
	"github.com/san-kum/pidtune/internal/fitness"
	"github.com/san-kum/pidtune/internal/ga"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/pso"
	"github.com/san-kum/pidtune/internal/sim"
)

const (
	DefaultPreset     = "first_order"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultCost       = "composite"

	// CompositeCost selects the step-metrics score instead of a trajectory
	// cost.
	CompositeCost = "composite"
)

type Config struct {
	Plant PlantConfig `yaml:"plant"`
	Sim   SimConfig   `yaml:"sim"`
	Cost  CostConfig  `yaml:"cost"`
	GA    GAConfig    `yaml:"ga"`
	PSO   PSOConfig   `yaml:"pso"`
}

// PlantConfig names a preset or spells out the transfer function. Explicit
// coefficients win over the preset.
type PlantConfig struct {
	Preset string    `yaml:"preset,omitempty"`
	Num    []float64 `yaml:"num,omitempty"`
	Den    []float64 `yaml:"den,omitempty"`
}

type SimConfig struct {
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Adaptive   bool    `yaml:"adaptive"`
	Tolerance  float64 `yaml:"tolerance"`
	Workers    int     `yaml:"workers"`
}

// CostConfig picks the objective. Name is "composite" or one of
// fitness.CostNames; trajectory costs are sampled every Dt over Duration.
type CostConfig struct {
	Name     string  `yaml:"name"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Setpoint float64 `yaml:"setpoint"`
	Q        float64 `yaml:"q"`
	R        float64 `yaml:"r"`
}

type GAConfig struct {
	PopulationSize int     `yaml:"population_size"`
	NBits          int     `yaml:"n_bits"`
	Low            float64 `yaml:"low"`
	High           float64 `yaml:"high"`
	MutationRate   float64 `yaml:"mutation_rate"`
	TargetFitness  float64 `yaml:"target_fitness"`
	MaxGenerations int     `yaml:"max_generations"`
	Seed           int64   `yaml:"seed"`
}

type PSOConfig struct {
	Particles   int        `yaml:"particles"`
	Generations int        `yaml:"generations"`
	W           float64    `yaml:"w"`
	C1          float64    `yaml:"c1"`
	C2          float64    `yaml:"c2"`
	VMax        float64    `yaml:"vmax"`
	KpRange     [2]float64 `yaml:"kp_range"`
	KiRange     [2]float64 `yaml:"ki_range"`
	KdRange     [2]float64 `yaml:"kd_range"`
	Seed        int64      `yaml:"seed"`
}

func DefaultConfig() *Config {
	gaCfg := ga.DefaultConfig()
	psoCfg := pso.DefaultConfig()
	dyn := dynamo.DefaultConfig()

	return &Config{
		Plant: PlantConfig{Preset: DefaultPreset},
		Sim: SimConfig{
			Integrator: DefaultIntegrator,
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Tolerance:  dyn.Tolerance,
		},
		Cost: CostConfig{
			Name:     DefaultCost,
			Dt:       DefaultDt,
			Duration: DefaultDuration,
			Setpoint: 1,
			Q:        1,
			R:        1,
		},
		GA: GAConfig{
			PopulationSize: gaCfg.PopulationSize,
			NBits:          gaCfg.NBits,
			Low:            gaCfg.Bounds.Low,
			High:           gaCfg.Bounds.High,
			MutationRate:   gaCfg.MutationRate,
			TargetFitness:  gaCfg.TargetFitness,
			MaxGenerations: gaCfg.MaxGenerations,
			Seed:           gaCfg.Seed,
		},
		PSO: PSOConfig{
			Particles:   psoCfg.Particles,
			Generations: psoCfg.Generations,
			W:           psoCfg.W,
			C1:          psoCfg.C1,
			C2:          psoCfg.C2,
			VMax:        psoCfg.VMax,
			KpRange:     [2]float64{psoCfg.Bounds[0].Low, psoCfg.Bounds[0].High},
			KiRange:     [2]float64{psoCfg.Bounds[1].Low, psoCfg.Bounds[1].High},
			KdRange:     [2]float64{psoCfg.Bounds[2].Low, psoCfg.Bounds[2].High},
			Seed:        psoCfg.Seed,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section by building the objects it describes.
func (c *Config) Validate() error {
	if _, err := c.TransferFunction(); err != nil {
		return err
	}
	if _, err := c.Simulator(); err != nil {
		return err
	}
	if err := c.GA.Engine().Validate(); err != nil {
		return err
	}
	if err := c.PSO.Engine().Validate(); err != nil {
		return err
	}
	if c.Cost.Name != CompositeCost {
		if _, err := fitness.LookupCost(c.Cost.Name, c.Cost.Dt); err != nil {
			return err
		}
		if _, err := sim.Grid(c.Cost.Duration, c.Cost.Dt); err != nil {
			return fmt.Errorf("cost grid: %w", err)
		}
	}
	return nil
}

// TransferFunction resolves the plant.
func (c *Config) TransferFunction() (lti.TransferFunction, error) {
	p := c.Plant
	if len(p.Num) > 0 || len(p.Den) > 0 {
		return lti.New(p.Num, p.Den)
	}
	preset := GetPreset(p.Preset)
	if preset == nil {
		return lti.TransferFunction{}, fmt.Errorf("unknown plant preset: %q", p.Preset)
	}
	return lti.New(preset.Num, preset.Den)
}

func (c SimConfig) Dynamo() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	cfg.Adaptive = c.Adaptive
	if c.Tolerance > 0 {
		cfg.Tolerance = c.Tolerance
	}
	return cfg
}

func (c *Config) Simulator() (*sim.Simulator, error) {
	factory, err := sim.LookupIntegrator(c.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	dyn := c.Sim.Dynamo()
	if err := dyn.Validate(); err != nil {
		return nil, err
	}
	return sim.New(factory, dyn), nil
}

// Scorer builds the objective described by Cost on top of s.
func (c *Config) Scorer(s *sim.Simulator) (fitness.Scorer, error) {
	if c.Cost.Name == CompositeCost {
		return fitness.NewMetricsScore(s, fitness.Composite), nil
	}

	cost, err := fitness.LookupCost(c.Cost.Name, c.Cost.Dt)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(c.Cost.Name, "lqr") {
		cost = fitness.LQR(c.Cost.Q, c.Cost.R)
	}
	times, err := sim.Grid(c.Cost.Duration, c.Cost.Dt)
	if err != nil {
		return nil, fmt.Errorf("cost grid: %w", err)
	}
	return fitness.NewTrajectoryScore(s, cost, times, c.Cost.Setpoint)
}

func (c GAConfig) Engine() ga.Config {
	return ga.Config{
		PopulationSize: c.PopulationSize,
		NVars:          3,
		NBits:          c.NBits,
		Bounds:         ga.Bounds{Low: c.Low, High: c.High},
		MutationRate:   c.MutationRate,
		TargetFitness:  c.TargetFitness,
		MaxGenerations: c.MaxGenerations,
		Seed:           c.Seed,
	}
}

func (c PSOConfig) Engine() pso.Config {
	return pso.Config{
		Particles:   c.Particles,
		Generations: c.Generations,
		W:           c.W,
		C1:          c.C1,
		C2:          c.C2,
		VMax:        c.VMax,
		Bounds: []pso.Range{
			{Low: c.KpRange[0], High: c.KpRange[1]},
			{Low: c.KiRange[0], High: c.KiRange[1]},
			{Low: c.KdRange[0], High: c.KdRange[1]},
		},
		Seed: c.Seed,
	}
}
