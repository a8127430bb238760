package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrScenarioNotFound = errors.New("scenario not found")

	// Input errors
	ErrMissingQuestionnaires = errors.New("scenario has no questionnaires")
	ErrInvalidCategory       = errors.New("invalid scenario category")
	ErrMissingScenarioID     = errors.New("scenario ID is required")
)

// Context keys for error values
const (
	ScenarioIDKey = "scenario_id"
)
