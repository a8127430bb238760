package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ScenarioUseCase maintains the register of scenarios and keeps their risks evaluated
type ScenarioUseCase struct {
	repo        interfaces.Repository
	risk        *RiskUseCase
	concurrency int
}

func NewScenarioUseCase(repo interfaces.Repository, risk *RiskUseCase, concurrency int) *ScenarioUseCase {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &ScenarioUseCase{
		repo:        repo,
		risk:        risk,
		concurrency: concurrency,
	}
}

// Add evaluates the scenario's questionnaires and stores it
func (uc *ScenarioUseCase) Add(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	evaluated, err := uc.evaluate(ctx, scenario)
	if err != nil {
		return nil, err
	}

	created, err := uc.repo.Scenario().Create(ctx, evaluated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scenario")
	}

	logging.From(ctx).Info("scenario added",
		"id", created.ID,
		"name", created.DisplayName(),
		"level", created.Level(),
	)
	return created, nil
}

// Import stores a scenario as it is when it already carries a classified risk,
// and evaluates it otherwise
func (uc *ScenarioUseCase) Import(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	if scenario == nil {
		return nil, goerr.Wrap(ErrMissingQuestionnaires, "scenario is required")
	}
	if scenario.Risk == nil || scenario.Risk.Classification == nil {
		return uc.Add(ctx, scenario)
	}
	if err := validateCategory(scenario.Category); err != nil {
		return nil, err
	}

	created, err := uc.repo.Scenario().Create(ctx, scenario)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to import scenario")
	}
	return created, nil
}

// Update re-evaluates the scenario and replaces the stored one
func (uc *ScenarioUseCase) Update(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	if scenario == nil || scenario.ID == "" {
		return nil, goerr.Wrap(ErrMissingScenarioID, "scenario ID is required for update")
	}
	if _, err := uc.Get(ctx, scenario.ID); err != nil {
		return nil, err
	}

	evaluated, err := uc.evaluate(ctx, scenario)
	if err != nil {
		return nil, err
	}

	updated, err := uc.repo.Scenario().Update(ctx, evaluated)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update scenario", goerr.V(ScenarioIDKey, scenario.ID))
	}
	return updated, nil
}

func (uc *ScenarioUseCase) Remove(ctx context.Context, id types.ScenarioID) error {
	if err := uc.repo.Scenario().Delete(ctx, id); err != nil {
		return repositoryError(err, "failed to remove scenario", id)
	}
	return nil
}

func (uc *ScenarioUseCase) Get(ctx context.Context, id types.ScenarioID) (*model.Scenario, error) {
	scenario, err := uc.repo.Scenario().Get(ctx, id)
	if err != nil {
		return nil, repositoryError(err, "failed to get scenario", id)
	}
	return scenario, nil
}

// repositoryError maps a missing record to ErrScenarioNotFound and wraps anything else as is
func repositoryError(err error, msg string, id types.ScenarioID) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrScenarioNotFound, "scenario not found", goerr.V(ScenarioIDKey, id))
	}
	return goerr.Wrap(err, msg, goerr.V(ScenarioIDKey, id))
}

func (uc *ScenarioUseCase) List(ctx context.Context) ([]*model.Scenario, error) {
	scenarios, err := uc.repo.Scenario().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list scenarios")
	}
	return scenarios, nil
}

// Summary counts the stored scenarios per risk level
func (uc *ScenarioUseCase) Summary(ctx context.Context) (model.Summary, error) {
	scenarios, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := model.NewSummary()
	for _, scenario := range scenarios {
		summary.Count(scenario)
	}
	return summary, nil
}

// Reevaluate runs every stored scenario through the simulation again, with at
// most the configured number of scenarios in flight
func (uc *ScenarioUseCase) Reevaluate(ctx context.Context) error {
	scenarios, err := uc.List(ctx)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.concurrency)

	for _, scenario := range scenarios {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluated, err := uc.evaluate(ctx, scenario)
			if err != nil {
				return goerr.Wrap(err, "failed to re-evaluate scenario", goerr.V(ScenarioIDKey, scenario.ID))
			}
			if _, err := uc.repo.Scenario().Update(ctx, evaluated); err != nil {
				return goerr.Wrap(err, "failed to store re-evaluated scenario", goerr.V(ScenarioIDKey, scenario.ID))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	logging.From(ctx).Info("scenarios re-evaluated", "count", len(scenarios))
	return nil
}

// Assessment snapshots the register under the given header fields
func (uc *ScenarioUseCase) Assessment(ctx context.Context, header model.Assessment) (*model.Assessment, error) {
	scenarios, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}

	assessment := &model.Assessment{
		AnalysisObject: header.AnalysisObject,
		Version:        header.Version,
		Date:           header.Date,
		Scope:          header.Scope,
		Owner:          header.Owner,
		Scenarios:      scenarios,
	}
	assessment.Summarize()
	return assessment, nil
}

func (uc *ScenarioUseCase) evaluate(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	if scenario == nil || scenario.Questionnaires == nil {
		return nil, goerr.Wrap(ErrMissingQuestionnaires, "scenario must carry questionnaires")
	}
	if err := validateCategory(scenario.Category); err != nil {
		return nil, err
	}

	evaluated := scenario.Clone()
	risk, err := uc.risk.EvaluateQuestionnaires(ctx, evaluated.Questionnaires, evaluated.Budget, evaluated.Currency)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate scenario", goerr.V(ScenarioIDKey, scenario.ID))
	}
	evaluated.Risk = risk
	if evaluated.Description == "" {
		evaluated.Description = evaluated.AutoDescription()
	}
	return evaluated, nil
}

func validateCategory(id types.CategoryID) error {
	if id == "" {
		return nil
	}
	if err := id.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidCategory, "invalid scenario category", goerr.V("category", id), goerr.V("cause", err.Error()))
	}
	return nil
}
