package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidRange          = goerr.New("invalid range")
	ErrInvalidCalculation    = goerr.New("invalid calculation")
	ErrAnswerNotFound        = goerr.New("answer not found")
	ErrUnsupportedAnswer     = goerr.New("unsupported answer type")
	ErrInvalidThresholdTable = goerr.New("invalid threshold table")
	ErrNonOrdinalValue       = goerr.New("threshold value is not an ordinal number")
	ErrMissingDimension      = goerr.New("risk dimension is missing")
	ErrNegativeDimension     = goerr.New("risk dimension is negative")
	ErrInvalidBudget         = goerr.New("invalid budget")
	ErrStatsOnly             = goerr.New("simulation has no source range")
)

// Context keys for error values
const (
	RangeMinKey      = "min"
	RangeProbableKey = "probable"
	RangeMaxKey      = "max"
	CalculationKey   = "calculation"
	AnswerKey        = "answer"
	TableKey         = "table"
	ThresholdKey     = "threshold"
	DimensionKey     = "dimension"
	ValueKey         = "value"
)
