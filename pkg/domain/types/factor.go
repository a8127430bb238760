package types

import "fmt"

// Factor identifies which risk dimension a questionnaire estimates
type Factor string

const (
	FactorThreatEventFrequency Factor = "tef"
	FactorVulnerability        Factor = "vuln"
	FactorLossMagnitude        Factor = "lm"
)

// AllFactors returns all valid factors
func AllFactors() []Factor {
	return []Factor{
		FactorThreatEventFrequency,
		FactorVulnerability,
		FactorLossMagnitude,
	}
}

// IsValid checks if the factor is valid
func (f Factor) IsValid() bool {
	switch f {
	case FactorThreatEventFrequency,
		FactorVulnerability,
		FactorLossMagnitude:
		return true
	default:
		return false
	}
}

// String returns the string representation of the factor
func (f Factor) String() string {
	return string(f)
}

// ParseFactor parses a string into a Factor
func ParseFactor(s string) (Factor, error) {
	f := Factor(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid factor: %s", s)
	}
	return f, nil
}
