package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig

	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate the catalogue and optionally input documents without simulating",
		ArgsUsage: "[input.json...]",
		Flags:     appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			// Step 1: Load and validate the catalogue
			catalogue, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "catalogue validation failed")
			}

			perFactor := make(map[types.Factor]int)
			for _, q := range catalogue.Questionnaires {
				perFactor[types.Factor(q.Factor)]++
			}
			logger.Info("Catalogue validation passed",
				"path", appCfg.Path(),
				"questionnaires", len(catalogue.Questionnaires),
				"tef", perFactor[types.FactorThreatEventFrequency],
				"vuln", perFactor[types.FactorVulnerability],
				"lm", perFactor[types.FactorLossMagnitude],
			)

			// Step 2: Check each input document resolves against the catalogue
			for _, path := range c.Args().Slice() {
				if err := validateInput(ctx, catalogue, path); err != nil {
					return goerr.Wrap(err, "input validation failed", goerr.V("path", path))
				}
				logger.Info("Input validation passed", "path", path)
			}

			return nil
		},
	}
}

func validateInput(ctx context.Context, catalogue *config.Catalogue, path string) error {
	data, err := readInput(ctx, path)
	if err != nil {
		return err
	}
	doc, err := parseDocument(data)
	if err != nil {
		return err
	}

	if doc.risk != nil {
		return doc.risk.Validate()
	}

	for i, sd := range doc.assessment.Scenarios {
		if sd == nil {
			return goerr.Wrap(errInvalidInput, "scenario is null", goerr.V("index", i))
		}
		scenario, err := sd.build(catalogue)
		if err != nil {
			return err
		}
		if scenario.Questionnaires == nil {
			continue
		}
		if _, err := scenario.Questionnaires.RiskInput(scenario.Budget, scenario.Currency); err != nil {
			return goerr.Wrap(err, "failed to score questionnaires", goerr.V("scenario", scenario.DisplayName()))
		}
	}
	return nil
}
