package types

import "fmt"

// Calculation names the strategy a questionnaire uses to aggregate its answers
type Calculation string

const (
	CalculationSum      Calculation = "sum"
	CalculationMultiply Calculation = "multiply"
	CalculationMean     Calculation = "mean"
	CalculationMean75   Calculation = "mean_75"
	CalculationRange    Calculation = "range"
)

// DefaultCalculation is used when a questionnaire does not name a strategy
const DefaultCalculation = CalculationMean

// AllCalculations returns all valid calculation strategies
func AllCalculations() []Calculation {
	return []Calculation{
		CalculationSum,
		CalculationMultiply,
		CalculationMean,
		CalculationMean75,
		CalculationRange,
	}
}

// IsValid checks if the calculation is a known strategy
func (c Calculation) IsValid() bool {
	switch c {
	case CalculationSum,
		CalculationMultiply,
		CalculationMean,
		CalculationMean75,
		CalculationRange:
		return true
	default:
		return false
	}
}

// Normalize returns the calculation, treating empty as DefaultCalculation.
func (c Calculation) Normalize() Calculation {
	if c == "" {
		return DefaultCalculation
	}
	return c
}

// String returns the string representation of the calculation
func (c Calculation) String() string {
	return string(c)
}

// ParseCalculation parses a string into a Calculation. Empty input yields DefaultCalculation.
func ParseCalculation(s string) (Calculation, error) {
	c := Calculation(s).Normalize()
	if !c.IsValid() {
		return "", fmt.Errorf("invalid calculation: %s", s)
	}
	return c, nil
}
