package montecarlo

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/interfaces"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/utils/logging"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultSamples is the number of draws per simulation
	DefaultSamples = 100_000
	MinSamples     = 1_000
	MaxSamples     = 10_000_000
)

// ErrInvalidSamples is returned for a sample count outside [MinSamples, MaxSamples]
var ErrInvalidSamples = goerr.New("invalid sample count")

// Engine turns Ranges into Simulations
type Engine struct {
	sampler interfaces.Sampler
	samples int
}

type Option func(*Engine)

// WithSampler replaces the default PERT sampler
func WithSampler(s interfaces.Sampler) Option {
	return func(e *Engine) {
		e.sampler = s
	}
}

// WithSamples sets the number of draws per simulation
func WithSamples(n int) Option {
	return func(e *Engine) {
		e.samples = n
	}
}

// New creates an Engine
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		sampler: &PERT{},
		samples: DefaultSamples,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.samples < MinSamples || e.samples > MaxSamples {
		return nil, goerr.Wrap(ErrInvalidSamples, "sample count out of bounds",
			goerr.V("samples", e.samples), goerr.V("min", MinSamples), goerr.V("max", MaxSamples))
	}
	return e, nil
}

// Samples returns the configured number of draws
func (e *Engine) Samples() int {
	return e.samples
}

// Sampler returns the configured sampler
func (e *Engine) Sampler() interfaces.Sampler {
	return e.sampler
}

// Simulate samples r and derives min, max, p90 and the mode. A degenerate range is
// widened with Range.Perturb first and keeps its probable value as the mode; a range
// collapsed at zero yields an all-zero Simulation without sampling.
func (e *Engine) Simulate(ctx context.Context, r model.Range) (*model.Simulation, error) {
	if r.IsDegenerate() && r.Probable().IsZero() {
		zero := decimal.Zero
		return model.NewSimulation(r, zero, zero, zero, zero), nil
	}

	target := r
	if r.IsDegenerate() {
		target = r.Perturb()
	}

	started := time.Now()
	samples, err := e.sampler.Sample(target, e.samples)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sample range", goerr.V("range", target.String()))
	}

	s := summarize(samples)
	probable := decimal.NewFromFloat(s.mode)
	if r.IsDegenerate() {
		probable = r.Probable()
	}

	logging.From(ctx).Debug("simulated range",
		"range", r.String(),
		"distribution", e.sampler.Name(),
		"samples", len(samples),
		"mode", s.mode,
		"p90", s.p90,
		"elapsed", time.Since(started),
	)

	return model.NewSimulation(r,
		decimal.NewFromFloat(s.min),
		probable,
		decimal.NewFromFloat(s.max),
		decimal.NewFromFloat(s.p90),
	), nil
}

// Resimulate samples the source range of sim again. A decoded, stats-only
// Simulation has no source and fails with model.ErrStatsOnly.
func (e *Engine) Resimulate(ctx context.Context, sim *model.Simulation) (*model.Simulation, error) {
	source, ok := sim.Source()
	if !ok {
		return nil, goerr.Wrap(model.ErrStatsOnly, "cannot resample a decoded simulation")
	}
	return e.Simulate(ctx, source)
}

type summary struct {
	min, max, p90, mode float64
}

// summarize sorts samples in place and derives the statistics; samples are not used afterwards
func summarize(samples []float64) summary {
	slices.Sort(samples)
	return summary{
		min:  samples[0],
		max:  samples[len(samples)-1],
		p90:  stat.Quantile(0.9, stat.LinInterp, samples, nil),
		mode: histogramMode(samples),
	}
}

// histogramMode estimates the peak of a sorted sample set as the centre of the
// tallest bin of a histogram smoothed with a three-bin moving average
func histogramMode(sorted []float64) float64 {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if !(hi > lo) {
		return lo
	}

	bins := int(math.Ceil(2 * math.Cbrt(float64(len(sorted)))))
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// Span may round the last divider below hi, Histogram needs it strictly above
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	best, bestScore := 0, -1.0
	for i := range counts {
		from, to := max(i-1, 0), min(i+1, len(counts)-1)
		score := floats.Sum(counts[from:to+1]) / float64(to-from+1)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return (dividers[best] + dividers[best+1]) / 2
}
