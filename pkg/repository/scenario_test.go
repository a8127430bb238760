package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/secmon-lab/fairisk/pkg/repository/memory"
	"github.com/shopspring/decimal"
)

func newQuestionnaires(t *testing.T) *model.QuestionnaireSet {
	t.Helper()
	weight, err := model.NewRangeFromFloat(1, 2, 3)
	if err != nil {
		t.Fatalf("failed to create range: %v", err)
	}
	q := model.NewQuestion("How often?", model.Alternative{Text: "Sometimes", Weight: weight})
	if err := q.SetAnswer(0); err != nil {
		t.Fatalf("failed to answer: %v", err)
	}
	return &model.QuestionnaireSet{
		TEF: model.NewQuestionnaire("tef", types.CalculationMean, q),
	}
}

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		scenario := &model.Scenario{
			Name:     "Phishing",
			Actor:    "an external attacker",
			Budget:   decimal.NewFromInt(1000),
			Currency: "EUR",
		}

		created, err := repo.Scenario().Create(ctx, scenario)
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}

		if err := created.ID.Validate(); err != nil {
			t.Errorf("expected valid ID, got %q: %v", created.ID, err)
		}
		if created.Name != scenario.Name {
			t.Errorf("expected name=%s, got %s", scenario.Name, created.Name)
		}
		if created.CreatedAt.IsZero() {
			t.Error("expected non-zero CreatedAt")
		}
		if created.UpdatedAt.IsZero() {
			t.Error("expected non-zero UpdatedAt")
		}
		if scenario.ID != "" {
			t.Error("expected input scenario to be left untouched")
		}
	})

	t.Run("Create keeps a given ID and rejects duplicates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.NewScenarioID()
		created, err := repo.Scenario().Create(ctx, &model.Scenario{ID: id, Name: "Fixed"})
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}
		if created.ID != id {
			t.Errorf("expected ID=%s, got %s", id, created.ID)
		}

		_, err = repo.Scenario().Create(ctx, &model.Scenario{ID: id, Name: "Again"})
		if !errors.Is(err, memory.ErrAlreadyExists) {
			t.Errorf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("Get retrieves existing scenario", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Scenario().Create(ctx, &model.Scenario{
			Name:           "Insider data theft",
			Questionnaires: newQuestionnaires(t),
		})
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}

		retrieved, err := repo.Scenario().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get scenario: %v", err)
		}

		if !retrieved.Equal(created) {
			t.Errorf("expected retrieved scenario to equal created one")
		}
		if retrieved.Questionnaires.TEF.Questions[0].Answer().Text != "Sometimes" {
			t.Errorf("expected answer to be persisted")
		}
	})

	t.Run("Get returns copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Scenario().Create(ctx, &model.Scenario{
			Name:           "Copy check",
			Questionnaires: newQuestionnaires(t),
		})
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}

		first, err := repo.Scenario().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get scenario: %v", err)
		}
		first.Name = "Modified"
		first.Questionnaires.TEF.Questions[0].Text = "Modified"

		second, err := repo.Scenario().Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("failed to get scenario: %v", err)
		}
		if second.Name != "Copy check" {
			t.Errorf("expected stored name to be unchanged, got %s", second.Name)
		}
		if second.Questionnaires.TEF.Questions[0].Text != "How often?" {
			t.Errorf("expected stored question to be unchanged")
		}
	})

	t.Run("Get returns error for non-existent scenario", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Scenario().Get(ctx, types.NewScenarioID())
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List returns all scenarios in creation order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		names := []string{"first", "second", "third"}
		for _, name := range names {
			if _, err := repo.Scenario().Create(ctx, &model.Scenario{Name: name}); err != nil {
				t.Fatalf("failed to create scenario: %v", err)
			}
		}

		scenarios, err := repo.Scenario().List(ctx)
		if err != nil {
			t.Fatalf("failed to list scenarios: %v", err)
		}
		if len(scenarios) != len(names) {
			t.Fatalf("expected %d scenarios, got %d", len(names), len(scenarios))
		}
		for i, scenario := range scenarios {
			if scenario.Name != names[i] {
				t.Errorf("expected scenario %d to be %s, got %s", i, names[i], scenario.Name)
			}
		}
	})

	t.Run("List on empty repository", func(t *testing.T) {
		repo := newRepo(t)

		scenarios, err := repo.Scenario().List(context.Background())
		if err != nil {
			t.Fatalf("failed to list scenarios: %v", err)
		}
		if len(scenarios) != 0 {
			t.Errorf("expected no scenarios, got %d", len(scenarios))
		}
	})

	t.Run("Update modifies existing scenario", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Scenario().Create(ctx, &model.Scenario{Name: "Original"})
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}

		created.Name = "Updated"
		updated, err := repo.Scenario().Update(ctx, created)
		if err != nil {
			t.Fatalf("failed to update scenario: %v", err)
		}

		if updated.Name != "Updated" {
			t.Errorf("expected name=Updated, got %s", updated.Name)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("expected CreatedAt to be preserved")
		}
		if updated.UpdatedAt.Before(created.UpdatedAt) {
			t.Errorf("expected UpdatedAt to move forward")
		}
	})

	t.Run("Update returns error for non-existent scenario", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Scenario().Update(ctx, &model.Scenario{ID: types.NewScenarioID()})
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes existing scenario", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Scenario().Create(ctx, &model.Scenario{Name: "To be deleted"})
		if err != nil {
			t.Fatalf("failed to create scenario: %v", err)
		}

		if err := repo.Scenario().Delete(ctx, created.ID); err != nil {
			t.Fatalf("failed to delete scenario: %v", err)
		}

		_, err = repo.Scenario().Get(ctx, created.ID)
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("expected ErrNotFound after deletion, got %v", err)
		}
	})

	t.Run("Delete returns error for non-existent scenario", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.Scenario().Delete(context.Background(), types.NewScenarioID())
		if !errors.Is(err, memory.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Concurrent creates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for range 20 {
			wg.Go(func() {
				if _, err := repo.Scenario().Create(ctx, &model.Scenario{Name: "parallel"}); err != nil {
					t.Errorf("failed to create scenario: %v", err)
				}
			})
		}
		wg.Wait()

		scenarios, err := repo.Scenario().List(ctx)
		if err != nil {
			t.Fatalf("failed to list scenarios: %v", err)
		}
		if len(scenarios) != 20 {
			t.Errorf("expected 20 scenarios, got %d", len(scenarios))
		}
	})
}

func TestMemoryScenarioRepository(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}
