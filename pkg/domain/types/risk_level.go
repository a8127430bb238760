package types

import "fmt"

// RiskLevel is the combined qualitative level of a classified risk
type RiskLevel string

const (
	RiskLevelVeryLow  RiskLevel = "very_low"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMiddle   RiskLevel = "middle"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// AllRiskLevels returns all risk levels ordered from least to most severe
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelVeryLow,
		RiskLevelLow,
		RiskLevelMiddle,
		RiskLevelHigh,
		RiskLevelCritical,
	}
}

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelVeryLow,
		RiskLevelLow,
		RiskLevelMiddle,
		RiskLevelHigh,
		RiskLevelCritical:
		return true
	default:
		return false
	}
}

// Severity returns the 1-based rank of the level, or 0 for an unknown level
func (l RiskLevel) Severity() int {
	for i, level := range AllRiskLevels() {
		if level == l {
			return i + 1
		}
	}
	return 0
}

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return level, nil
}
