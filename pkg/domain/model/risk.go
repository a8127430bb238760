package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

// EqualityPrecision is the number of decimal places compared by Risk.Equal
const EqualityPrecision int32 = 2

// RiskInput carries the three estimated dimensions plus the budget the loss magnitude applies to
type RiskInput struct {
	ThreatEventFrequency *Range          `json:"threat_event_frequency"`
	Vulnerability        *Range          `json:"vulnerability"`
	LossMagnitude        *Range          `json:"loss_magnitude"`
	Budget               decimal.Decimal `json:"budget"`
	Currency             string          `json:"currency"`
}

// Validate fails when a dimension is missing or negative, or the budget is negative
func (in *RiskInput) Validate() error {
	dimensions := []struct {
		name  string
		value *Range
	}{
		{"threat_event_frequency", in.ThreatEventFrequency},
		{"vulnerability", in.Vulnerability},
		{"loss_magnitude", in.LossMagnitude},
	}
	for _, d := range dimensions {
		if d.value == nil {
			return goerr.Wrap(ErrMissingDimension, "risk input is incomplete", goerr.V(DimensionKey, d.name))
		}
		if d.value.Min().IsNegative() {
			return goerr.Wrap(ErrNegativeDimension, "risk dimension must not be negative",
				goerr.V(DimensionKey, d.name), goerr.V(RangeMinKey, d.value.Min().String()))
		}
	}
	if in.Budget.IsNegative() {
		return goerr.Wrap(ErrInvalidBudget, "budget must not be negative", goerr.V("budget", in.Budget.String()))
	}
	return nil
}

// Risk is the result of propagating a RiskInput through the simulation stages
type Risk struct {
	ThreatEventFrequency Range           `json:"threat_event_frequency"`
	Vulnerability        Range           `json:"vulnerability"`
	LossEventFrequency   *Simulation     `json:"loss_event_frequency"`
	LossMagnitude        *Simulation     `json:"loss_magnitude"`
	AnnualLossExpectancy *Simulation     `json:"annual_loss_expectancy"`
	Budget               decimal.Decimal `json:"budget"`
	Currency             string          `json:"currency"`
}

// Equal compares the risks by Fingerprint. Sampled statistics differ between runs and only
// take part when the loss magnitude input is unknown.
func (r *Risk) Equal(other *Risk) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Fingerprint() == other.Fingerprint()
}

// Fingerprint is a stable key over the rounded input fields. The loss magnitude enters by
// its sampled input range, or by its rounded statistics for a decoded risk.
func (r *Risk) Fingerprint() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		r.ThreatEventFrequency.Round(EqualityPrecision),
		r.Vulnerability.Round(EqualityPrecision),
		lossMagnitudeKey(r.LossMagnitude),
		r.Budget.StringFixed(EqualityPrecision),
		r.Currency)
}

func lossMagnitudeKey(lm *Simulation) string {
	if lm == nil {
		return "none"
	}
	if source, ok := lm.Source(); ok {
		return "range " + source.Round(EqualityPrecision).String()
	}
	return "stats " + lm.Round(EqualityPrecision).String()
}
