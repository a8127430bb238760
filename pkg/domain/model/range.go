package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shopspring/decimal"
)

// DegenerateSpread widens a single-point range before it is sampled:
// min = probable / DegenerateSpread, max = probable * DegenerateSpread.
var DegenerateSpread = decimal.RequireFromString("1.5")

// answeredPrecision is the number of decimal places used to decide whether a weight is zero-width
const answeredPrecision = 10

var two = decimal.NewFromInt(2)

// Range is an immutable three-point estimate with min <= probable <= max.
// The zero value is the zero-width range at 0.
type Range struct {
	min      decimal.Decimal
	probable decimal.Decimal
	max      decimal.Decimal
}

// NewRange validates and builds a Range. When min equals max and probable is non-zero
// the range is expanded to [probable/2, probable*2].
func NewRange(min, probable, max decimal.Decimal) (Range, error) {
	if min.Equal(max) && !probable.IsZero() {
		min = probable.Div(two)
		max = probable.Mul(two)
	}

	return restoreRange(min, probable, max)
}

// NewRangeFromFloat is NewRange for float64 inputs
func NewRangeFromFloat(min, probable, max float64) (Range, error) {
	return NewRange(decimal.NewFromFloat(min), decimal.NewFromFloat(probable), decimal.NewFromFloat(max))
}

// RangeOf builds a Range from a single probable value, expanded to [probable/2, probable*2]
func RangeOf(probable decimal.Decimal) (Range, error) {
	return NewRange(decimal.Zero, probable, decimal.Zero)
}

// Identity is the multiplicative identity Range(1, 1, 1)
func Identity() Range {
	one := decimal.NewFromInt(1)
	return Range{min: one, probable: one, max: one}
}

func (r Range) Min() decimal.Decimal      { return r.min }
func (r Range) Probable() decimal.Decimal { return r.probable }
func (r Range) Max() decimal.Decimal      { return r.max }

// Floats returns min, probable and max as float64
func (r Range) Floats() (min, probable, max float64) {
	return r.min.InexactFloat64(), r.probable.InexactFloat64(), r.max.InexactFloat64()
}

// Width returns max - min
func (r Range) Width() decimal.Decimal {
	return r.max.Sub(r.min)
}

// Add returns the pointwise sum of two ranges
func (r Range) Add(other Range) Range {
	return Range{
		min:      r.min.Add(other.min),
		probable: r.probable.Add(other.probable),
		max:      r.max.Add(other.max),
	}
}

// Mul returns the pointwise product of two ranges
func (r Range) Mul(other Range) Range {
	return Range{
		min:      r.min.Mul(other.min),
		probable: r.probable.Mul(other.probable),
		max:      r.max.Mul(other.max),
	}
}

// Scale multiplies every point by factor
func (r Range) Scale(factor decimal.Decimal) Range {
	return Range{
		min:      r.min.Mul(factor),
		probable: r.probable.Mul(factor),
		max:      r.max.Mul(factor),
	}
}

// Div divides every point by n. n must be non-zero.
func (r Range) Div(n int64) Range {
	d := decimal.NewFromInt(n)
	return Range{
		min:      r.min.Div(d),
		probable: r.probable.Div(d),
		max:      r.max.Div(d),
	}
}

// IsDegenerate reports whether the range collapses to a single point
func (r Range) IsDegenerate() bool {
	return r.min.Equal(r.probable) && r.probable.Equal(r.max)
}

// IsZeroWidth reports whether the range collapses to a single point after rounding
// to answeredPrecision places. Unanswered questions carry a zero-width weight.
func (r Range) IsZeroWidth() bool {
	return r.Round(answeredPrecision).IsDegenerate()
}

// Perturb widens a degenerate range to [probable/DegenerateSpread, probable*DegenerateSpread].
// Non-degenerate ranges are returned unchanged.
func (r Range) Perturb() Range {
	if !r.IsDegenerate() {
		return r
	}
	lo := r.probable.Div(DegenerateSpread)
	hi := r.probable.Mul(DegenerateSpread)
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	return Range{min: lo, probable: r.probable, max: hi}
}

// Round rounds every point to places decimal places
func (r Range) Round(places int32) Range {
	return Range{
		min:      r.min.Round(places),
		probable: r.probable.Round(places),
		max:      r.max.Round(places),
	}
}

// Scalars returns probable, max and min in that order
func (r Range) Scalars() []decimal.Decimal {
	return []decimal.Decimal{r.probable, r.max, r.min}
}

// Equal compares the three points numerically
func (r Range) Equal(other Range) bool {
	return r.min.Equal(other.min) && r.probable.Equal(other.probable) && r.max.Equal(other.max)
}

func (r Range) String() string {
	return "[" + r.min.String() + ", " + r.probable.String() + ", " + r.max.String() + "]"
}

type rangeRecord struct {
	Min      decimal.Decimal `json:"min"`
	Probable decimal.Decimal `json:"probable"`
	Max      decimal.Decimal `json:"max"`
}

// MarshalJSON emits {"min","probable","max"} as decimal strings
func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(rangeRecord{Min: r.min, Probable: r.probable, Max: r.max})
}

type rangeInput struct {
	Min      *decimal.Decimal `json:"min"`
	Probable decimal.Decimal  `json:"probable"`
	Max      *decimal.Decimal `json:"max"`
}

// UnmarshalJSON accepts numbers or numeric strings. A record carrying min and max is
// restored exactly (ordering is still validated); a record with only probable is
// expanded as RangeOf does.
func (r *Range) UnmarshalJSON(data []byte) error {
	var rec rangeInput
	if err := json.Unmarshal(data, &rec); err != nil {
		return goerr.Wrap(err, "failed to decode range")
	}

	if rec.Min == nil && rec.Max == nil {
		parsed, err := RangeOf(rec.Probable)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	var min, max decimal.Decimal
	if rec.Min != nil {
		min = *rec.Min
	}
	if rec.Max != nil {
		max = *rec.Max
	}
	parsed, err := restoreRange(min, rec.Probable, max)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// restoreRange validates ordering without applying the auto-expansion rules
func restoreRange(min, probable, max decimal.Decimal) (Range, error) {
	if min.GreaterThan(probable) || probable.GreaterThan(max) {
		return Range{}, goerr.Wrap(ErrInvalidRange, "min <= probable <= max does not hold",
			goerr.V(RangeMinKey, min.String()),
			goerr.V(RangeProbableKey, probable.String()),
			goerr.V(RangeMaxKey, max.String()))
	}
	return Range{min: min, probable: probable, max: max}, nil
}
