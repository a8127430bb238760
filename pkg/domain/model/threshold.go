package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

// ThresholdValue is the value a threshold entry maps to: an ordinal for probability and
// consequence tables, a label for the risk table
type ThresholdValue struct {
	ordinal int
	label   string
	isLabel bool
}

// Ordinal creates a numeric ThresholdValue
func Ordinal(n int) ThresholdValue {
	return ThresholdValue{ordinal: n}
}

// Label creates a textual ThresholdValue
func Label(s string) ThresholdValue {
	return ThresholdValue{label: s, isLabel: true}
}

// Ordinal returns the numeric value; ok is false for labels
func (v ThresholdValue) Ordinal() (n int, ok bool) {
	return v.ordinal, !v.isLabel
}

// IsLabel reports whether the value is textual
func (v ThresholdValue) IsLabel() bool {
	return v.isLabel
}

func (v ThresholdValue) String() string {
	if v.isLabel {
		return v.label
	}
	return strconv.Itoa(v.ordinal)
}

func (v ThresholdValue) MarshalJSON() ([]byte, error) {
	if v.isLabel {
		return json.Marshal(v.label)
	}
	return json.Marshal(v.ordinal)
}

func (v *ThresholdValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return goerr.Wrap(err, "failed to decode threshold label")
		}
		*v = Label(s)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return goerr.Wrap(ErrNonOrdinalValue, "threshold value must be an integer or a string",
			goerr.V(ValueKey, string(data)))
	}
	*v = Ordinal(n)
	return nil
}

// Threshold maps every metric up to Threshold onto Value
type Threshold struct {
	Value     ThresholdValue  `json:"value"`
	Text      string          `json:"text"`
	Threshold decimal.Decimal `json:"threshold"`
}

// ThresholdTable is ordered by ascending threshold. The last entry also catches every larger value.
type ThresholdTable []Threshold

// Validate requires a non-empty table with strictly ascending thresholds
func (t ThresholdTable) Validate() error {
	if len(t) == 0 {
		return goerr.Wrap(ErrInvalidThresholdTable, "threshold table is empty")
	}
	for i := 1; i < len(t); i++ {
		if !t[i].Threshold.GreaterThan(t[i-1].Threshold) {
			return goerr.Wrap(ErrInvalidThresholdTable, "thresholds must be strictly ascending",
				goerr.V("index", i),
				goerr.V(ThresholdKey, t[i].Threshold.String()),
				goerr.V("previous", t[i-1].Threshold.String()))
		}
	}
	return nil
}

// Classify maps value to an entry. A value at or above the top threshold returns the top entry;
// otherwise the table is scanned from the highest threshold down and the last entry whose
// threshold is >= value wins, so a value equal to a threshold lands in that lower bucket.
func Classify(value decimal.Decimal, table ThresholdTable) (Threshold, error) {
	if err := table.Validate(); err != nil {
		return Threshold{}, err
	}

	top := table[len(table)-1]
	if value.GreaterThanOrEqual(top.Threshold) {
		return top, nil
	}

	var found Threshold
	for i := len(table) - 1; i >= 0; i-- {
		if value.LessThanOrEqual(table[i].Threshold) {
			found = table[i]
		}
	}
	return found, nil
}

// Thresholds are the three tables used to classify a Risk
type Thresholds struct {
	Probability ThresholdTable `json:"probability"`
	Consequence ThresholdTable `json:"consequence"`
	Risk        ThresholdTable `json:"risk"`
}

// Validate checks every table. Probability and consequence values must be ordinals, risk values labels.
func (t *Thresholds) Validate() error {
	tables := []struct {
		name    string
		table   ThresholdTable
		ordinal bool
	}{
		{"probability", t.Probability, true},
		{"consequence", t.Consequence, true},
		{"risk", t.Risk, false},
	}

	for _, tt := range tables {
		if err := tt.table.Validate(); err != nil {
			return goerr.Wrap(err, "invalid threshold table", goerr.V(TableKey, tt.name))
		}
		for _, entry := range tt.table {
			if tt.ordinal == entry.Value.IsLabel() {
				return goerr.Wrap(ErrNonOrdinalValue, "threshold value has the wrong kind",
					goerr.V(TableKey, tt.name),
					goerr.V(ValueKey, entry.Value.String()),
					goerr.V("ordinal_expected", tt.ordinal))
			}
		}
	}
	return nil
}

func threshold(value ThresholdValue, text, limit string) Threshold {
	return Threshold{Value: value, Text: text, Threshold: decimal.RequireFromString(limit)}
}

// DefaultThresholds returns the built-in five-step tables
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		Probability: ThresholdTable{
			threshold(Ordinal(1), "Very low", "0.1"),
			threshold(Ordinal(2), "Low", "0.5"),
			threshold(Ordinal(3), "Medium", "8.0"),
			threshold(Ordinal(4), "High", "13.0"),
			threshold(Ordinal(5), "Very high", "13.01"),
		},
		Consequence: ThresholdTable{
			threshold(Ordinal(1), "Negligible impact", "0.001"),
			threshold(Ordinal(2), "Limited impact", "0.005"),
			threshold(Ordinal(3), "Noticeable impact", "0.02"),
			threshold(Ordinal(4), "Serious impact", "0.05"),
			threshold(Ordinal(5), "Critical impact", "0.051"),
		},
		Risk: ThresholdTable{
			threshold(Label("very_low"), "Very low", "3"),
			threshold(Label("low"), "Low", "6"),
			threshold(Label("middle"), "Medium", "10"),
			threshold(Label("high"), "High", "15"),
			threshold(Label("critical"), "Very high", "25"),
		},
	}
}
