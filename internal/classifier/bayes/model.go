package bayes

import (
	"fmt"
	"math"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/distribution"
)

var _ classifier.Classifier = (*Model)(nil)

var (
	// logFloor replaces an infinite log density so a single numerical feature cannot zero a class.
	logFloor = math.Log(1e-16)
	// maxExpSum is the largest exponent whose exponential is still finite.
	maxExpSum = math.Log(math.MaxFloat64)
)

func newModel(numClasses int, categoryCounts []int, numNumerical int) *Model {
	m := &Model{
		categoryCounts: append([]int(nil), categoryCounts...),
		numNumerical:   numNumerical,
		apriori:        make([][][]float64, numClasses),
		distributions:  make([][]distribution.Distribution, numClasses),
	}
	for c := 0; c < numClasses; c++ {
		m.apriori[c] = make([][]float64, len(categoryCounts))
		m.distributions[c] = make([]distribution.Distribution, numNumerical)
	}
	return m
}

// Model is a trained Naive Bayes classifier. It is never modified after Fit returns and is safe for
// concurrent use.
type Model struct {
	categoryCounts []int
	numNumerical   int
	// apriori[c][f][k] is the probability of category k of feature f within class c.
	apriori       [][][]float64
	distributions [][]distribution.Distribution
}

func (m *Model) NumClasses() int {
	return len(m.apriori)
}

func (m *Model) CategoryCounts() []int {
	return append([]int(nil), m.categoryCounts...)
}

func (m *Model) NumNumerical() int {
	return m.numNumerical
}

// CategoricalTable returns a copy of the probability table of feature f in class c.
func (m *Model) CategoricalTable(c, f int) []float64 {
	return append([]float64(nil), m.apriori[c][f]...)
}

func (m *Model) Distribution(c, g int) distribution.Distribution {
	return m.distributions[c][g].Copy()
}

func (m *Model) SupportsWeightedData() bool {
	return false
}

// Classify returns one probability per class. Numerical values with zero density are absorbed by a
// floor and never fail. When every class underflows the returned probabilities are all zero.
func (m *Model) Classify(in classifier.Example) (*classifier.Conclusion, error) {
	if err := m.validate(in); err != nil {
		return nil, err
	}

	probs := make([]float64, m.NumClasses())
	maxLog := math.Inf(-1)
	for c := range probs {
		// TODO: confirm with model owners whether a log(P(class)) seed is wanted; the class prior
		// currently enters only through the smoothed categorical tables.
		var logProb float64
		for g, d := range m.distributions[c] {
			lp := d.LogPdf(in.NumericalValue(g))
			if math.IsInf(lp, 0) || math.IsNaN(lp) {
				lp = logFloor
			}
			logProb += lp
		}
		for f, table := range m.apriori[c] {
			logProb += math.Log(table[in.CategoricalValue(f)])
		}
		probs[c] = logProb
		if logProb > maxLog {
			maxLog = logProb
		}
	}

	// Shift only when the sum of exponentials could overflow; underflow keeps its all-zero outcome.
	var shift float64
	if maxLog > maxExpSum-math.Log(float64(len(probs))) {
		shift = maxLog
	}
	var sum float64
	for c := range probs {
		probs[c] = math.Exp(probs[c] - shift)
		sum += probs[c]
	}

	if sum != 0 {
		for c := range probs {
			probs[c] /= sum
		}
	}
	return &classifier.Conclusion{Probabilities: probs}, nil
}

func (m *Model) validate(in classifier.Example) error {
	if in.NumCategorical() != len(m.categoryCounts) {
		return fmt.Errorf("%w: %d categorical values, expected %d",
			ErrDimensionMismatch, in.NumCategorical(), len(m.categoryCounts))
	}
	if in.NumNumerical() != m.numNumerical {
		return fmt.Errorf("%w: %d numerical values, expected %d",
			ErrDimensionMismatch, in.NumNumerical(), m.numNumerical)
	}
	for f, k := range m.categoryCounts {
		if v := in.CategoricalValue(f); v < 0 || v >= k {
			return fmt.Errorf("%w: feature %d value %d of %d", ErrCategoryOutOfRange, f, v, k)
		}
	}
	return nil
}

func (m *Model) Copy() classifier.Classifier {
	return m.Clone()
}

// Clone returns a deep copy sharing no tables or distributions with m.
func (m *Model) Clone() *Model {
	out := newModel(m.NumClasses(), m.categoryCounts, m.numNumerical)
	for c := range m.apriori {
		for f := range m.apriori[c] {
			out.apriori[c][f] = append([]float64(nil), m.apriori[c][f]...)
		}
		for g, d := range m.distributions[c] {
			out.distributions[c][g] = d.Copy()
		}
	}
	return out
}
