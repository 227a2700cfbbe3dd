package classifier

import (
	"context"
)

type ProvideFn func() (Trainer, error)

// Example is a single observation: one category index per categorical feature and one value per
// numerical feature.
type Example interface {
	CategoricalValue(idx int) int
	NumericalValue(idx int) float64
	NumCategorical() int
	NumNumerical() int
}

// DataSet is the read access a trainer needs to labelled training data.
type DataSet interface {
	NumClasses() int
	Samples(class int) []Example
	NumCategoricalVars() int
	// CategoryCounts returns the number of categories of every categorical feature.
	CategoryCounts() []int
	NumNumericalVars() int
	// SampleVariableVector returns the values of numerical feature idx observed for class.
	SampleVariableVector(class, idx int) []float64
}

type Trainer interface {
	Train(ctx context.Context, data DataSet) (Classifier, error)
	SupportsWeightedData() bool
}

type Classifier interface {
	Classify(in Example) (*Conclusion, error)
	NumClasses() int
	Copy() Classifier
	SupportsWeightedData() bool
}

// Conclusion holds one probability per class. When every class underflowed the probabilities are all
// zero and the conclusion is indeterminate.
type Conclusion struct {
	Probabilities []float64
}

func (c *Conclusion) Prob(class int) float64 {
	return c.Probabilities[class]
}

func (c *Conclusion) Sum() float64 {
	var s float64
	for _, p := range c.Probabilities {
		s += p
	}
	return s
}

// Indeterminate reports whether no class received any probability mass.
func (c *Conclusion) Indeterminate() bool {
	for _, p := range c.Probabilities {
		if p != 0 {
			return false
		}
	}
	return true
}

// MostLikely returns the index of the most probable class, or -1 for an indeterminate conclusion.
func (c *Conclusion) MostLikely() int {
	best, bestP := -1, 0.0
	for i, p := range c.Probabilities {
		if p > bestP {
			best, bestP = i, p
		}
	}
	return best
}
