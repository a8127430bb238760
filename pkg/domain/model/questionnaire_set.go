package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// QuestionnaireSet holds the questionnaires for the three risk dimensions of one scenario
type QuestionnaireSet struct {
	TEF  *Questionnaire `json:"tef"`
	Vuln *Questionnaire `json:"vuln"`
	LM   *Questionnaire `json:"lm"`
}

// Get returns the questionnaire for a factor, or nil
func (s *QuestionnaireSet) Get(factor types.Factor) *Questionnaire {
	switch factor {
	case types.FactorThreatEventFrequency:
		return s.TEF
	case types.FactorVulnerability:
		return s.Vuln
	case types.FactorLossMagnitude:
		return s.LM
	default:
		return nil
	}
}

// RiskInput aggregates every questionnaire into the ranges of a RiskInput.
// A missing questionnaire leaves its dimension nil.
func (s *QuestionnaireSet) RiskInput(budget decimal.Decimal, currency string) (*RiskInput, error) {
	input := &RiskInput{
		Budget:   budget,
		Currency: currency,
	}

	targets := []struct {
		factor types.Factor
		dst    **Range
	}{
		{types.FactorThreatEventFrequency, &input.ThreatEventFrequency},
		{types.FactorVulnerability, &input.Vulnerability},
		{types.FactorLossMagnitude, &input.LossMagnitude},
	}

	for _, target := range targets {
		q := s.Get(target.factor)
		if q == nil {
			continue
		}
		value, err := q.Value()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to aggregate questionnaire", goerr.V(DimensionKey, target.factor))
		}
		*target.dst = &value
	}

	return input, nil
}

// Clone deep-copies every questionnaire
func (s *QuestionnaireSet) Clone() *QuestionnaireSet {
	if s == nil {
		return nil
	}
	clone := func(q *Questionnaire) *Questionnaire {
		if q == nil {
			return nil
		}
		return q.Clone()
	}
	return &QuestionnaireSet{
		TEF:  clone(s.TEF),
		Vuln: clone(s.Vuln),
		LM:   clone(s.LM),
	}
}

// Equal compares the three questionnaires
func (s *QuestionnaireSet) Equal(other *QuestionnaireSet) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.TEF.Equal(other.TEF) && s.Vuln.Equal(other.Vuln) && s.LM.Equal(other.LM)
}
