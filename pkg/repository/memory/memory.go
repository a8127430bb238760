package memory

import (
	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	scenario *scenarioRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		scenario: newScenarioRepository(),
	}
}

func (m *Memory) Scenario() interfaces.ScenarioRepository {
	return m.scenario
}
