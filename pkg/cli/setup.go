package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/repository/memory"
	"github.com/secmon-lab/fairisk/pkg/usecase"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/secmon-lab/fairisk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// outputConfig holds the flags shared by commands that print results
type outputConfig struct {
	format string
	path   string
}

func (x *outputConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format [json|text]",
			Value:       formatJSON,
			Destination: &x.format,
			Sources:     cli.EnvVars("FAIRISK_FORMAT"),
			Validator: func(s string) error {
				if s != formatJSON && s != formatText {
					return goerr.New("format must be json or text", goerr.V("format", s))
				}
				return nil
			},
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write output to a file instead of stdout",
			Destination: &x.path,
		},
	}
}

// write sends data to the output file, or to stdout when no path is given
func (x *outputConfig) write(ctx context.Context, stdout io.Writer, data []byte) error {
	if x.path == "" || x.path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return goerr.Wrap(err, "failed to write output")
		}
		return nil
	}

	f, err := os.Create(filepath.Clean(x.path))
	if err != nil {
		return goerr.Wrap(err, "failed to create output file", goerr.V("path", x.path))
	}
	if _, err := f.Write(data); err != nil {
		safe.Close(ctx, f)
		return goerr.Wrap(err, "failed to write output file", goerr.V("path", x.path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", x.path))
	}
	return nil
}

// setup loads the catalogue and wires the engine, repository and use cases
func setup(ctx context.Context, appCfg *config.AppConfig, simCfg *config.Simulation) (*usecase.UseCases, *config.Catalogue, error) {
	catalogue, err := appCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load catalogue")
	}

	thresholds, err := catalogue.Thresholds()
	if err != nil {
		return nil, nil, err
	}

	engine, err := simCfg.Configure(catalogue.Simulation)
	if err != nil {
		return nil, nil, err
	}

	opts := []usecase.Option{usecase.WithThresholds(thresholds)}
	if n := simCfg.Concurrency(catalogue.Simulation); n > 0 {
		opts = append(opts, usecase.WithConcurrency(n))
	}

	logging.From(ctx).Debug("configured",
		"catalogue", appCfg.Path(),
		"simulation", simCfg,
		"samples", engine.Samples(),
		"sampler", engine.Sampler().Name(),
	)

	return usecase.New(memory.New(), engine, opts...), catalogue, nil
}
