package distribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultMaxSearchSamples = 2000
	DefaultMinStdDev        = 1e-3
)

// DefaultFamilies returns the candidate families in tie-break order.
func DefaultFamilies() []Family {
	return []Family{
		NormalFamily{},
		ExponentialFamily{},
		UniformFamily{},
		LogNormalFamily{},
		GammaFamily{},
		LaplaceFamily{},
	}
}

type Option func(*Search)

func WithFamilies(families ...Family) Option {
	return func(s *Search) {
		s.families = families
	}
}

// WithFallback sets the family used when none of the candidates can describe the sample.
func WithFallback(f Family) Option {
	return func(s *Search) {
		s.fallback = f
	}
}

func WithMaxSearchSamples(n int) Option {
	return func(s *Search) {
		s.maxSamples = n
	}
}

// NewSearch returns a search over the default families with a floored Normal fallback.
func NewSearch(opts ...Option) *Search {
	s := &Search{
		families:   DefaultFamilies(),
		fallback:   NormalFamily{MinStdDev: DefaultMinStdDev},
		maxSamples: DefaultMaxSearchSamples,
	}
	for _, f := range opts {
		f(s)
	}
	return s
}

// Search picks the family with the smallest Kolmogorov-Smirnov statistic against the sample.
// Search is safe for concurrent use.
type Search struct {
	families   []Family
	fallback   Family
	maxSamples int
}

// Fit implements FitFn.
func (s *Search) Fit(sample []float64) (Distribution, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}

	if floats.Min(sample) == floats.Max(sample) {
		// a constant sample carries no shape information
		return s.fitFallback(sample)
	}
	sorted := s.subsample(sample)
	sort.Float64s(sorted)

	var (
		best     Distribution
		bestStat = math.Inf(1)
	)
	for _, family := range s.families {
		d, err := family.Fit(sample)
		if err != nil {
			continue
		}
		stat := KSStatistic(d, sorted)
		if stat < bestStat {
			best, bestStat = d, stat
		}
	}
	if best != nil {
		return best, nil
	}
	return s.fitFallback(sample)
}

func (s *Search) fitFallback(sample []float64) (Distribution, error) {
	if s.fallback == nil {
		return nil, fmt.Errorf("no family fits sample of size %d: %w", len(sample), ErrDegenerateSample)
	}
	d, err := s.fallback.Fit(sample)
	if err != nil {
		return nil, fmt.Errorf("fallback %s: %w", s.fallback.Name(), err)
	}
	return d, nil
}

// subsample returns a copy of at most maxSamples values. The choice is seeded by the sample size so the
// same sample always yields the same subset.
func (s *Search) subsample(sample []float64) []float64 {
	out := make([]float64, len(sample))
	copy(out, sample)
	if s.maxSamples <= 0 || len(out) <= s.maxSamples {
		return out
	}

	var rng fastrand.RNG
	rng.Seed(uint32(len(out)))
	n := uint32(len(out))
	for i := 0; i < s.maxSamples; i++ {
		j := uint32(i) + rng.Uint32n(n-uint32(i))
		out[i], out[j] = out[j], out[i]
	}
	return out[:s.maxSamples]
}

// KSStatistic returns the one-sample Kolmogorov-Smirnov statistic of sorted against d.
func KSStatistic(d Distribution, sorted []float64) float64 {
	n := float64(len(sorted))
	if n == 0 {
		return math.Inf(1)
	}
	var stat float64
	for i, x := range sorted {
		f := d.Cdf(x)
		if math.IsNaN(f) {
			return math.Inf(1)
		}
		stat = math.Max(stat, math.Max(f-float64(i)/n, float64(i+1)/n-f))
	}
	return stat
}
