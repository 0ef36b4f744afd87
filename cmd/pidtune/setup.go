package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidtune/internal/config"
	"github.com/san-kum/pidtune/internal/fitness"
	"github.com/san-kum/pidtune/internal/lti"
	"github.com/san-kum/pidtune/internal/sim"
)

// env is everything a tuning command needs, resolved from config and flags.
type env struct {
	cfg       *config.Config
	plantName string
	plant     lti.TransferFunction
	sim       *sim.Simulator
	eval      *fitness.Evaluator
	logger    *slog.Logger
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if logJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// loadConfig reads --config over the defaults, then applies only the flags
// the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Plant = config.PlantConfig{Preset: preset}
	}
	if flags.Changed("num") {
		cfg.Plant.Num = num
	}
	if flags.Changed("den") {
		cfg.Plant.Den = den
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Sim.Workers = workers
	}
	if flags.Changed("cost") {
		cfg.Cost.Name = strings.ToLower(costName)
	}
	if flags.Changed("seed") {
		cfg.GA.Seed = seed
		cfg.PSO.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func plantName(cfg *config.Config) string {
	if len(cfg.Plant.Num) > 0 || len(cfg.Plant.Den) > 0 {
		return "custom"
	}
	return cfg.Plant.Preset
}

func setup(cmd *cobra.Command) (*env, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	plant, err := cfg.TransferFunction()
	if err != nil {
		return nil, err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return nil, err
	}
	scorer, err := cfg.Scorer(s)
	if err != nil {
		return nil, err
	}

	logger.Debug("configured",
		"plant", plant.String(),
		"integrator", cfg.Sim.Integrator,
		"cost", cfg.Cost.Name,
	)

	return &env{
		cfg:       cfg,
		plantName: plantName(cfg),
		plant:     plant,
		sim:       s,
		eval:      fitness.NewEvaluator(plant, scorer, fitness.WithLogger(logger), fitness.WithWorkers(cfg.Sim.Workers)),
		logger:    logger,
	}, nil
}
