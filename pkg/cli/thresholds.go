package cli

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdThresholds() *cli.Command {
	var appCfg config.AppConfig
	var outCfg outputConfig

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, outCfg.Flags()...)

	return &cli.Command{
		Name:  "thresholds",
		Usage: "Show the threshold tables in effect",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			catalogue, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load catalogue")
			}
			thresholds, err := catalogue.Thresholds()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if outCfg.format == formatText {
				renderThresholds(&buf, thresholds)
			} else if err := renderJSON(&buf, thresholds); err != nil {
				return err
			}

			return outCfg.write(ctx, c.Root().Writer, buf.Bytes())
		},
	}
}
