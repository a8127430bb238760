package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Scenario describes who exploits which weakness against what, and the risk it carries
type Scenario struct {
	ID             types.ScenarioID  `json:"id"`
	Name           string            `json:"name"`
	Category       types.CategoryID  `json:"category,omitempty"`
	Actor          string            `json:"actor"`
	Asset          string            `json:"asset"`
	Threat         string            `json:"threat"`
	Vulnerability  string            `json:"vulnerability"`
	Description    string            `json:"description"`
	Budget         decimal.Decimal   `json:"budget"`
	Currency       string            `json:"currency"`
	Questionnaires *QuestionnaireSet `json:"questionnaires"`
	Risk           *DiscreteRisk     `json:"risk,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AutoDescription builds a sentence from the actor, vulnerability, threat and asset
func (s *Scenario) AutoDescription() string {
	return fmt.Sprintf("Risk that %s exploits %s to realise %s against %s.", s.Actor, s.Vulnerability, s.Threat, s.Asset)
}

// DisplayName returns Name, or the auto description when Name is empty
func (s *Scenario) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.AutoDescription()
}

// Level returns the classified level, or empty when the scenario has not been evaluated
func (s *Scenario) Level() types.RiskLevel {
	return s.Risk.Level()
}

// Clone deep-copies the scenario. The evaluated risk is immutable and shared.
func (s *Scenario) Clone() *Scenario {
	clone := *s
	clone.Questionnaires = s.Questionnaires.Clone()
	return &clone
}

// Equal compares descriptive fields, questionnaires and the input fields of the risk.
// IDs, timestamps and sampled statistics are ignored.
func (s *Scenario) Equal(other *Scenario) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.DisplayName() == other.DisplayName() &&
		s.Category == other.Category &&
		s.Actor == other.Actor &&
		s.Asset == other.Asset &&
		s.Threat == other.Threat &&
		s.Vulnerability == other.Vulnerability &&
		s.Description == other.Description &&
		s.Budget.Equal(other.Budget) &&
		s.Currency == other.Currency &&
		s.Questionnaires.Equal(other.Questionnaires) &&
		s.Risk.Equal(other.Risk)
}
