package interfaces

// Repository defines the interface for the scenario register
type Repository interface {
	Scenario() ScenarioRepository
}
