package interfaces

import "github.com/secmon-lab/fairisk/pkg/domain/model"

// Sampler draws n samples from a bounded distribution shaped by a three-point estimate
type Sampler interface {
	// Sample fails for a zero-width range; callers perturb degenerate ranges first
	Sample(r model.Range, n int) ([]float64, error)

	// Name identifies the distribution
	Name() string
}
