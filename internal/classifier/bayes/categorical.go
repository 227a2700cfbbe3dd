package bayes

import (
	"fmt"

	"github.com/go-sod/nbayes/internal/classifier"
)

// fitCategorical returns the Laplace-smoothed probability mass function of feature f over its k
// categories. Every category starts with one pseudo-observation.
func fitCategorical(samples []classifier.Example, f, k int) ([]float64, error) {
	table := make([]float64, k)
	for i := range table {
		table[i] = 1
	}
	for _, s := range samples {
		v := s.CategoricalValue(f)
		if v < 0 || v >= k {
			return nil, fmt.Errorf("%w: value %d of %d", ErrCategoryOutOfRange, v, k)
		}
		table[v]++
	}

	var sum float64
	for _, v := range table {
		sum += v
	}
	if sum == 0 {
		return nil, ErrDegenerateNormalization
	}
	for i := range table {
		table[i] /= sum
	}
	return table, nil
}
