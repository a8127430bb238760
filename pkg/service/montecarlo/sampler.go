package montecarlo

import (
	"math/rand/v2"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution names a sampler
type Distribution string

const (
	DistributionPERT       Distribution = "pert"
	DistributionTriangular Distribution = "triangular"
)

// ErrZeroWidth is returned when a sampler is asked to sample a range with max == min
var ErrZeroWidth = goerr.New("range has zero width")

// ErrUnknownDistribution is returned by NewSampler for an unsupported name
var ErrUnknownDistribution = goerr.New("unknown distribution")

// NewSampler returns the sampler for a distribution name. Empty selects PERT.
func NewSampler(d Distribution) (interfaces.Sampler, error) {
	switch d {
	case DistributionPERT, "":
		return &PERT{}, nil
	case DistributionTriangular:
		return &Triangular{}, nil
	default:
		return nil, goerr.Wrap(ErrUnknownDistribution, "unsupported distribution", goerr.V("distribution", d))
	}
}

// newSource returns a freshly seeded generator; every call samples independently
func newSource() rand.Source {
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

func bounds(r model.Range) (lo, mode, hi float64, err error) {
	lo, mode, hi = r.Floats()
	if !(hi > lo) {
		return 0, 0, 0, goerr.Wrap(ErrZeroWidth, "cannot sample range", goerr.V("range", r.String()))
	}
	if mode < lo || mode > hi {
		return 0, 0, 0, goerr.Wrap(model.ErrInvalidRange, "probable value lies outside the range", goerr.V("range", r.String()))
	}
	return lo, mode, hi, nil
}

// PERT samples min + Beta(alpha, beta) * (max - min) with
// alpha = 1 + 4(probable-min)/(max-min) and beta = 1 + 4(max-probable)/(max-min)
type PERT struct{}

var _ interfaces.Sampler = (*PERT)(nil)

func (p *PERT) Name() string { return string(DistributionPERT) }

func (p *PERT) Sample(r model.Range, n int) ([]float64, error) {
	lo, mode, hi, err := bounds(r)
	if err != nil {
		return nil, err
	}

	width := hi - lo
	beta := distuv.Beta{
		Alpha: 1 + 4*(mode-lo)/width,
		Beta:  1 + 4*(hi-mode)/width,
		Src:   newSource(),
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = lo + beta.Rand()*width
	}
	return samples, nil
}

// Triangular samples the triangular distribution on [min, max] peaking at probable
type Triangular struct{}

var _ interfaces.Sampler = (*Triangular)(nil)

func (t *Triangular) Name() string { return string(DistributionTriangular) }

func (t *Triangular) Sample(r model.Range, n int) ([]float64, error) {
	lo, mode, hi, err := bounds(r)
	if err != nil {
		return nil, err
	}

	dist := distuv.NewTriangle(lo, hi, mode, newSource())
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = dist.Rand()
	}
	return samples, nil
}
