package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Classification is the qualitative result of a DiscreteRisk
type Classification struct {
	Probability     int             `json:"probability"`
	ProbabilityText string          `json:"probability_text"`
	Consequence     int             `json:"consequence"`
	ConsequenceText string          `json:"consequence_text"`
	Risk            int             `json:"risk"`
	RiskText        string          `json:"risk_text"`
	Level           types.RiskLevel `json:"level"`
}

// Classify derives probability from the loss event frequency p90, consequence from the
// loss magnitude p90, and the combined level from their product
func (t *Thresholds) Classify(risk *Risk) (*Classification, error) {
	if risk == nil || risk.LossEventFrequency == nil || risk.LossMagnitude == nil {
		return nil, goerr.Wrap(ErrMissingDimension, "risk has not been simulated")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	probability, err := classifyOrdinal(risk.LossEventFrequency.P90(), t.Probability, "probability")
	if err != nil {
		return nil, err
	}
	consequence, err := classifyOrdinal(risk.LossMagnitude.P90(), t.Consequence, "consequence")
	if err != nil {
		return nil, err
	}

	product := probability.ordinal * consequence.ordinal
	level, err := Classify(decimal.NewFromInt(int64(product)), t.Risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify risk level", goerr.V(TableKey, "risk"))
	}

	return &Classification{
		Probability:     probability.ordinal,
		ProbabilityText: probability.entry.Text,
		Consequence:     consequence.ordinal,
		ConsequenceText: consequence.entry.Text,
		Risk:            product,
		RiskText:        level.Text,
		Level:           types.RiskLevel(level.Value.String()),
	}, nil
}

type ordinalResult struct {
	entry   Threshold
	ordinal int
}

func classifyOrdinal(value decimal.Decimal, table ThresholdTable, name string) (*ordinalResult, error) {
	entry, err := Classify(value, table)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify", goerr.V(TableKey, name))
	}
	n, ok := entry.Value.Ordinal()
	if !ok {
		return nil, goerr.Wrap(ErrNonOrdinalValue, "classification value is not ordinal",
			goerr.V(TableKey, name), goerr.V(ValueKey, entry.Value.String()))
	}
	return &ordinalResult{entry: entry, ordinal: n}, nil
}

// DiscreteRisk is a Risk together with the tables it was classified with and the result
type DiscreteRisk struct {
	*Risk
	Classification *Classification `json:"discrete_risk"`
	Thresholds     *Thresholds     `json:"thresholds"`
}

// Level returns the combined risk level, or empty when unclassified
func (d *DiscreteRisk) Level() types.RiskLevel {
	if d == nil || d.Classification == nil {
		return ""
	}
	return d.Classification.Level
}

// Equal compares the underlying risks. The classification depends on sampled
// percentiles and is left out.
func (d *DiscreteRisk) Equal(other *DiscreteRisk) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Risk.Equal(other.Risk)
}
