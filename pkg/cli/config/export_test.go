package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSimulationForTest creates a Simulation config for testing purposes
func NewSimulationForTest(samples int, distribution string, concurrency int) *Simulation {
	return &Simulation{
		samples:      samples,
		distribution: distribution,
		concurrency:  concurrency,
	}
}

// NewAppConfigForTest creates an AppConfig pointing at path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}

// ThresholdValue is exported for testing
var ThresholdValue = thresholdValue
