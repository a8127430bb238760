package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ScenarioID represents a unique identifier for a risk scenario
type ScenarioID string

// NewScenarioID generates a new random ScenarioID
func NewScenarioID() ScenarioID {
	return ScenarioID(uuid.NewString())
}

// Validate checks if the ScenarioID is a valid UUID
func (s ScenarioID) Validate() error {
	if s == "" {
		return goerr.New("scenario ID cannot be empty")
	}
	if _, err := uuid.Parse(string(s)); err != nil {
		return goerr.Wrap(err, "scenario ID must be a UUID", goerr.V("id", s))
	}
	return nil
}

// String returns the string representation of ScenarioID
func (s ScenarioID) String() string {
	return string(s)
}
