package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/utils/errutil"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var noColor bool
	var closers []func()
	// closers run after the error is logged and reported
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "no-color",
		Usage:       "Disable colored text output",
		Destination: &noColor,
		Sources:     cli.EnvVars("FAIRISK_NO_COLOR", "NO_COLOR"),
	})

	app := &cli.Command{
		Name:    "fairisk",
		Usage:   "Quantitative risk analysis with FAIR-style Monte Carlo simulation",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			closers = append(closers, f)
			if err != nil {
				return ctx, err
			}

			flush, err := sentryCfg.Configure(version)
			closers = append(closers, flush)
			if err != nil {
				return ctx, err
			}

			if noColor {
				color.NoColor = true
			}

			logging.Default().Debug("Starting fairisk", "logger", loggerCfg, "sentry", sentryCfg)
			return logging.With(ctx, logging.Default()), nil
		},
		Commands: []*cli.Command{
			cmdEvaluate(),
			cmdValidate(),
			cmdThresholds(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}
