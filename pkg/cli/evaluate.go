package cli

import (
	"bytes"
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/usecase"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdEvaluate() *cli.Command {
	var appCfg config.AppConfig
	var simCfg config.Simulation
	var outCfg outputConfig
	var refresh bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, simCfg.Flags()...)
	flags = append(flags, outCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "refresh",
		Usage:       "Re-run the simulation for scenarios that already carry an evaluated risk",
		Destination: &refresh,
	})

	return &cli.Command{
		Name:      "evaluate",
		Aliases:   []string{"e"},
		Usage:     "Evaluate a risk input or an assessment of scenarios",
		ArgsUsage: "[input.json|-]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, catalogue, err := setup(ctx, &appCfg, &simCfg)
			if err != nil {
				return err
			}

			data, err := readInput(ctx, c.Args().First())
			if err != nil {
				return err
			}
			doc, err := parseDocument(data)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch {
			case doc.risk != nil:
				risk, err := uc.Risk.EvaluateDiscrete(ctx, doc.risk, nil)
				if err != nil {
					return goerr.Wrap(err, "failed to evaluate risk")
				}
				if outCfg.format == formatText {
					renderDiscreteRisk(&buf, risk)
				} else if err := renderJSON(&buf, risk); err != nil {
					return err
				}

			default:
				assessment, err := evaluateAssessment(ctx, uc, catalogue, doc.assessment, refresh)
				if err != nil {
					return err
				}
				if outCfg.format == formatText {
					renderAssessment(&buf, assessment)
				} else if err := renderJSON(&buf, assessment); err != nil {
					return err
				}
			}

			return outCfg.write(ctx, c.Root().Writer, buf.Bytes())
		},
	}
}

func evaluateAssessment(ctx context.Context, uc *usecase.UseCases, catalogue *config.Catalogue, doc *assessmentDocument, refresh bool) (*model.Assessment, error) {
	for i, sd := range doc.Scenarios {
		if sd == nil {
			return nil, goerr.Wrap(errInvalidInput, "scenario is null", goerr.V("index", i))
		}
		scenario, err := sd.build(catalogue)
		if err != nil {
			return nil, err
		}

		added, err := uc.Scenario.Import(ctx, scenario)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to add scenario", goerr.V("index", i), goerr.V("scenario", scenario.DisplayName()))
		}
		logging.From(ctx).Debug("scenario loaded", "id", added.ID, "level", added.Level())
	}

	if refresh {
		if err := uc.Scenario.Reevaluate(ctx); err != nil {
			return nil, goerr.Wrap(err, "failed to re-evaluate scenarios")
		}
	}

	return uc.Scenario.Assessment(ctx, doc.header())
}
