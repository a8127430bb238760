package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/service/montecarlo"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/shopspring/decimal"
)

// RiskUseCase propagates estimated ranges through the loss event frequency,
// loss magnitude and annual loss expectancy stages and classifies the result.
type RiskUseCase struct {
	engine     *montecarlo.Engine
	thresholds *model.Thresholds
}

func NewRiskUseCase(engine *montecarlo.Engine, thresholds *model.Thresholds) *RiskUseCase {
	if thresholds == nil {
		thresholds = model.DefaultThresholds()
	}
	return &RiskUseCase{
		engine:     engine,
		thresholds: thresholds,
	}
}

// Thresholds returns the tables used when no tables are passed to EvaluateDiscrete
func (uc *RiskUseCase) Thresholds() *model.Thresholds {
	return uc.thresholds
}

func (uc *RiskUseCase) Evaluate(ctx context.Context, input *model.RiskInput) (*model.Risk, error) {
	if input == nil {
		return nil, goerr.Wrap(model.ErrMissingDimension, "risk input is required")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	tef := *input.ThreatEventFrequency
	vuln := *input.Vulnerability

	lef, err := uc.engine.Simulate(ctx, tef.Mul(vuln))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to simulate loss event frequency")
	}

	lm, err := uc.engine.Simulate(ctx, *input.LossMagnitude)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to simulate loss magnitude")
	}

	ale, err := uc.engine.Simulate(ctx, lef.Range().Mul(lm.Range()).Scale(input.Budget))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to simulate annual loss expectancy")
	}

	logging.From(ctx).Debug("risk evaluated",
		"lef", lef.String(),
		"lm", lm.String(),
		"ale", ale.String(),
		"currency", input.Currency,
	)

	return &model.Risk{
		ThreatEventFrequency: tef,
		Vulnerability:        vuln,
		LossEventFrequency:   lef,
		LossMagnitude:        lm,
		AnnualLossExpectancy: ale,
		Budget:               input.Budget,
		Currency:             input.Currency,
	}, nil
}

// EvaluateDiscrete evaluates the input and classifies it. A nil thresholds
// falls back to the tables the use case was built with.
func (uc *RiskUseCase) EvaluateDiscrete(ctx context.Context, input *model.RiskInput, thresholds *model.Thresholds) (*model.DiscreteRisk, error) {
	if thresholds == nil {
		thresholds = uc.thresholds
	}
	if err := thresholds.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid thresholds")
	}

	risk, err := uc.Evaluate(ctx, input)
	if err != nil {
		return nil, err
	}

	return uc.classify(risk, thresholds)
}

// EvaluateQuestionnaires scores the answered questionnaires and classifies the resulting risk
func (uc *RiskUseCase) EvaluateQuestionnaires(ctx context.Context, set *model.QuestionnaireSet, budget decimal.Decimal, currency string) (*model.DiscreteRisk, error) {
	if set == nil {
		return nil, goerr.Wrap(ErrMissingQuestionnaires, "questionnaires are required")
	}
	input, err := set.RiskInput(budget, currency)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score questionnaires")
	}
	return uc.EvaluateDiscrete(ctx, input, nil)
}

// Reclassify applies thresholds to an already evaluated risk without sampling again
func (uc *RiskUseCase) Reclassify(risk *model.Risk, thresholds *model.Thresholds) (*model.DiscreteRisk, error) {
	if thresholds == nil {
		thresholds = uc.thresholds
	}
	if err := thresholds.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid thresholds")
	}
	return uc.classify(risk, thresholds)
}

func (uc *RiskUseCase) classify(risk *model.Risk, thresholds *model.Thresholds) (*model.DiscreteRisk, error) {
	classification, err := thresholds.Classify(risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify risk")
	}

	return &model.DiscreteRisk{
		Risk:           risk,
		Classification: classification,
		Thresholds:     thresholds,
	}, nil
}
