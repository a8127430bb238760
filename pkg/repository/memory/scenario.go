package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

type scenarioRepository struct {
	mu        sync.RWMutex
	scenarios map[types.ScenarioID]*model.Scenario
	// insertion order, used to list scenarios in the order they were created
	seq     map[types.ScenarioID]uint64
	nextSeq uint64
}

func newScenarioRepository() *scenarioRepository {
	return &scenarioRepository{
		scenarios: make(map[types.ScenarioID]*model.Scenario),
		seq:       make(map[types.ScenarioID]uint64),
	}
}

func (r *scenarioRepository) Create(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := scenario.Clone()
	if created.ID == "" {
		created.ID = types.NewScenarioID()
	}
	if _, exists := r.scenarios[created.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "scenario already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	r.scenarios[created.ID] = created
	r.seq[created.ID] = r.nextSeq
	r.nextSeq++
	return created.Clone(), nil
}

func (r *scenarioRepository) Get(ctx context.Context, id types.ScenarioID) (*model.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenario, exists := r.scenarios[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "scenario not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return scenario.Clone(), nil
}

func (r *scenarioRepository) List(ctx context.Context) ([]*model.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]*model.Scenario, 0, len(r.scenarios))
	for _, scenario := range r.scenarios {
		scenarios = append(scenarios, scenario.Clone())
	}

	slices.SortFunc(scenarios, func(a, b *model.Scenario) int {
		return cmp.Compare(r.seq[a.ID], r.seq[b.ID])
	})
	return scenarios, nil
}

func (r *scenarioRepository) Update(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.scenarios[scenario.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "scenario not found", goerr.V("id", scenario.ID))
	}

	updated := scenario.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.scenarios[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *scenarioRepository) Delete(ctx context.Context, id types.ScenarioID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[id]; !exists {
		return goerr.Wrap(ErrNotFound, "scenario not found", goerr.V("id", id))
	}

	delete(r.scenarios, id)
	delete(r.seq, id)
	return nil
}
