package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/service/montecarlo"
	"github.com/urfave/cli/v3"
)

// Simulation holds the engine flags. Zero values defer to the catalogue,
// and then to the engine defaults.
type Simulation struct {
	samples      int
	distribution string
	concurrency  int
}

func (x *Simulation) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "samples",
			Aliases:     []string{"n"},
			Category:    "Simulation",
			Usage:       "Number of Monte Carlo draws per simulation",
			Destination: &x.samples,
			Sources:     cli.EnvVars("FAIRISK_SAMPLES"),
		},
		&cli.StringFlag{
			Name:        "distribution",
			Category:    "Simulation",
			Usage:       "Sampling distribution [pert|triangular]",
			Destination: &x.distribution,
			Sources:     cli.EnvVars("FAIRISK_DISTRIBUTION"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Category:    "Simulation",
			Usage:       "Number of scenarios evaluated in parallel",
			Destination: &x.concurrency,
			Sources:     cli.EnvVars("FAIRISK_CONCURRENCY"),
		},
	}
}

func (x Simulation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("samples", x.samples),
		slog.String("distribution", x.distribution),
		slog.Int("concurrency", x.concurrency),
	)
}

// Concurrency returns the flag value, or the catalogue value when the flag is unset
func (x *Simulation) Concurrency(settings SimulationSettings) int {
	if x.concurrency > 0 {
		return x.concurrency
	}
	return settings.Concurrency
}

// Configure builds the engine from the flags layered over the catalogue settings
func (x *Simulation) Configure(settings SimulationSettings) (*montecarlo.Engine, error) {
	distribution := x.distribution
	if distribution == "" {
		distribution = settings.Distribution
	}
	sampler, err := montecarlo.NewSampler(montecarlo.Distribution(distribution))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid distribution")
	}

	opts := []montecarlo.Option{montecarlo.WithSampler(sampler)}
	switch {
	case x.samples > 0:
		opts = append(opts, montecarlo.WithSamples(x.samples))
	case settings.Samples > 0:
		opts = append(opts, montecarlo.WithSamples(settings.Samples))
	}

	engine, err := montecarlo.New(opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create simulation engine")
	}
	return engine, nil
}
