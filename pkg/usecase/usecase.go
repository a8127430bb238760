package usecase

import (
	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/service/montecarlo"
)

// DefaultConcurrency bounds the number of scenarios evaluated at the same time
const DefaultConcurrency = 4

type UseCases struct {
	repo        interfaces.Repository
	engine      *montecarlo.Engine
	thresholds  *model.Thresholds
	concurrency int
	Risk        *RiskUseCase
	Scenario    *ScenarioUseCase
}

type Option func(*UseCases)

func WithThresholds(thresholds *model.Thresholds) Option {
	return func(uc *UseCases) {
		uc.thresholds = thresholds
	}
}

func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

func New(repo interfaces.Repository, engine *montecarlo.Engine, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		engine:      engine,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.thresholds == nil {
		uc.thresholds = model.DefaultThresholds()
	}

	uc.Risk = NewRiskUseCase(engine, uc.thresholds)
	uc.Scenario = NewScenarioUseCase(repo, uc.Risk, uc.concurrency)

	return uc
}
