package bayes

import (
	"fmt"
	"math"

	"github.com/go-sod/nbayes/internal/distribution"
)

type DistributionSnapshot struct {
	Name   string    `json:"name"`
	Params []float64 `json:"params"`
}

// Snapshot is the plain data form of a trained model.
type Snapshot struct {
	CategoryCounts []int                    `json:"categoryCounts"`
	NumNumerical   int                      `json:"numNumerical"`
	Tables         [][][]float64            `json:"tables"`
	Distributions  [][]DistributionSnapshot `json:"distributions"`
}

func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		CategoryCounts: m.CategoryCounts(),
		NumNumerical:   m.numNumerical,
		Tables:         make([][][]float64, m.NumClasses()),
		Distributions:  make([][]DistributionSnapshot, m.NumClasses()),
	}
	for c := range m.apriori {
		s.Tables[c] = make([][]float64, len(m.apriori[c]))
		for f := range m.apriori[c] {
			s.Tables[c][f] = m.CategoricalTable(c, f)
		}
		s.Distributions[c] = make([]DistributionSnapshot, len(m.distributions[c]))
		for g, d := range m.distributions[c] {
			s.Distributions[c][g] = DistributionSnapshot{Name: d.Name(), Params: d.Params()}
		}
	}
	return s
}

// FromSnapshot rebuilds a model, checking the shape of every table and distribution list.
func FromSnapshot(s Snapshot) (*Model, error) {
	numClasses := len(s.Tables)
	if numClasses == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrBadSnapshot)
	}
	if len(s.Distributions) != numClasses {
		return nil, fmt.Errorf("%w: %d distribution rows for %d classes", ErrBadSnapshot, len(s.Distributions), numClasses)
	}

	if s.NumNumerical < 0 {
		return nil, fmt.Errorf("%w: negative numerical count %d", ErrBadSnapshot, s.NumNumerical)
	}
	for f, k := range s.CategoryCounts {
		if k < 1 {
			return nil, fmt.Errorf("%w: feature %d has %d categories", ErrBadSnapshot, f, k)
		}
	}

	m := newModel(numClasses, s.CategoryCounts, s.NumNumerical)
	for c := 0; c < numClasses; c++ {
		if len(s.Tables[c]) != len(s.CategoryCounts) {
			return nil, fmt.Errorf("%w: class %d has %d tables", ErrBadSnapshot, c, len(s.Tables[c]))
		}
		for f, k := range s.CategoryCounts {
			table := s.Tables[c][f]
			if len(table) != k {
				return nil, fmt.Errorf("%w: class %d feature %d has %d categories, expected %d",
					ErrBadSnapshot, c, f, len(table), k)
			}
			var sum float64
			for _, p := range table {
				if p <= 0 || math.IsNaN(p) {
					return nil, fmt.Errorf("%w: class %d feature %d has non-positive probability", ErrBadSnapshot, c, f)
				}
				sum += p
			}
			if math.Abs(sum-1) > 1e-6 {
				return nil, fmt.Errorf("%w: class %d feature %d sums to %v", ErrBadSnapshot, c, f, sum)
			}
			m.apriori[c][f] = append([]float64(nil), table...)
		}

		if len(s.Distributions[c]) != s.NumNumerical {
			return nil, fmt.Errorf("%w: class %d has %d distributions", ErrBadSnapshot, c, len(s.Distributions[c]))
		}
		for g, ds := range s.Distributions[c] {
			d, err := distribution.New(ds.Name, ds.Params)
			if err != nil {
				return nil, fmt.Errorf("%w: class %d feature %d: %v", ErrBadSnapshot, c, g, err)
			}
			m.distributions[c][g] = d
		}
	}
	return m, nil
}
