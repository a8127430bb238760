package model

import (
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

// Summary counts scenarios per risk level
type Summary map[types.RiskLevel]int

// NewSummary returns a Summary with every known level at zero
func NewSummary() Summary {
	summary := make(Summary, len(types.AllRiskLevels()))
	for _, level := range types.AllRiskLevels() {
		summary[level] = 0
	}
	return summary
}

// Count adds one for the scenario's level. Unclassified scenarios are not counted.
func (s Summary) Count(scenario *Scenario) {
	if level := scenario.Level(); level != "" {
		s[level]++
	}
}

// Total returns the number of counted scenarios
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Assessment is a register of scenarios for one analysis object
type Assessment struct {
	AnalysisObject string      `json:"analysis_object"`
	Version        string      `json:"version"`
	Date           string      `json:"date"`
	Scope          string      `json:"scope"`
	Owner          string      `json:"owner"`
	Scenarios      []*Scenario `json:"scenarios"`
	Summary        Summary     `json:"summary"`
}

// Summarize recomputes Summary from Scenarios
func (a *Assessment) Summarize() Summary {
	summary := NewSummary()
	for _, scenario := range a.Scenarios {
		summary.Count(scenario)
	}
	a.Summary = summary
	return summary
}
