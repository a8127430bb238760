package interfaces

import (
	"context"

	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

type ScenarioRepository interface {
	// Create stores a new scenario and stamps its timestamps
	Create(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error)

	// Get retrieves a scenario by ID
	Get(ctx context.Context, id types.ScenarioID) (*model.Scenario, error)

	// List retrieves all scenarios in creation order
	List(ctx context.Context) ([]*model.Scenario, error)

	// Update replaces an existing scenario
	Update(ctx context.Context, scenario *model.Scenario) (*model.Scenario, error)

	// Delete deletes a scenario by ID
	Delete(ctx context.Context, id types.ScenarioID) error
}
