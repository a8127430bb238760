package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

// Simulation holds the summary statistics of a sampled Range. Samples are never kept.
type Simulation struct {
	min      decimal.Decimal
	probable decimal.Decimal
	max      decimal.Decimal
	p90      decimal.Decimal

	// source is the Range that was sampled. Nil when the Simulation was decoded from a record.
	source *Range
}

// NewSimulation builds a Simulation from statistics derived by sampling source
func NewSimulation(source Range, min, probable, max, p90 decimal.Decimal) *Simulation {
	return &Simulation{
		min:      min,
		probable: probable,
		max:      max,
		p90:      p90,
		source:   &source,
	}
}

// NewSimulationStats builds a stats-only Simulation that cannot be re-sampled
func NewSimulationStats(min, probable, max, p90 decimal.Decimal) *Simulation {
	return &Simulation{
		min:      min,
		probable: probable,
		max:      max,
		p90:      p90,
	}
}

func (s *Simulation) Min() decimal.Decimal      { return s.min }
func (s *Simulation) Probable() decimal.Decimal { return s.probable }
func (s *Simulation) Max() decimal.Decimal      { return s.max }
func (s *Simulation) P90() decimal.Decimal      { return s.p90 }

// Range exposes (min, probable, max) as a Range for the next multiplicative stage
func (s *Simulation) Range() Range {
	return Range{min: s.min, probable: s.probable, max: s.max}
}

// Source returns the sampled input Range. ok is false for a decoded, stats-only Simulation.
func (s *Simulation) Source() (r Range, ok bool) {
	if s == nil || s.source == nil {
		return Range{}, false
	}
	return *s.source, true
}

// Round returns a stats-only copy with every field rounded to places decimal places
func (s *Simulation) Round(places int32) *Simulation {
	return &Simulation{
		min:      s.min.Round(places),
		probable: s.probable.Round(places),
		max:      s.max.Round(places),
		p90:      s.p90.Round(places),
	}
}

// Equal compares the statistics numerically, ignoring the source range
func (s *Simulation) Equal(other *Simulation) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.min.Equal(other.min) &&
		s.probable.Equal(other.probable) &&
		s.max.Equal(other.max) &&
		s.p90.Equal(other.p90)
}

func (s *Simulation) String() string {
	return "min: " + s.min.String() + " mode: " + s.probable.String() + " p90: " + s.p90.String() + " max: " + s.max.String()
}

type simulationRecord struct {
	Min      decimal.Decimal `json:"min"`
	Probable decimal.Decimal `json:"probable"`
	Max      decimal.Decimal `json:"max"`
	P90      decimal.Decimal `json:"p90"`
}

// MarshalJSON emits exactly {min, probable, max, p90}
func (s *Simulation) MarshalJSON() ([]byte, error) {
	return json.Marshal(simulationRecord{
		Min:      s.min,
		Probable: s.probable,
		Max:      s.max,
		P90:      s.p90,
	})
}

// UnmarshalJSON restores a stats-only Simulation
func (s *Simulation) UnmarshalJSON(data []byte) error {
	var rec simulationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return goerr.Wrap(err, "failed to decode simulation")
	}
	*s = *NewSimulationStats(rec.Min, rec.Probable, rec.Max, rec.P90)
	return nil
}
