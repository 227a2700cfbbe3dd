package dataset

import (
	"errors"
	"fmt"

	"github.com/go-sod/nbayes/internal/classifier"
)

var (
	ErrDimensionMismatch  = errors.New("dataset: dimension mismatch")
	ErrCategoryOutOfRange = errors.New("dataset: category out of range")
	ErrUnknownCategory    = errors.New("dataset: unknown category")
)

var (
	_ classifier.Example = DataPoint{}
	_ classifier.DataSet = (*DataSet)(nil)
)

// CategoricalAttribute is a feature with a fixed, finite set of categories coded 0..K-1.
type CategoricalAttribute struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

func (a CategoricalAttribute) NumCategories() int {
	return len(a.Categories)
}

// Index returns the code of category, or an error when the attribute does not declare it.
func (a CategoricalAttribute) Index(category string) (int, error) {
	for i := range a.Categories {
		if a.Categories[i] == category {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q for attribute %q", ErrUnknownCategory, category, a.Name)
}

type DataPoint struct {
	Categorical []int
	Numerical   []float64
}

func (p DataPoint) CategoricalValue(idx int) int   { return p.Categorical[idx] }
func (p DataPoint) NumericalValue(idx int) float64 { return p.Numerical[idx] }
func (p DataPoint) NumCategorical() int            { return len(p.Categorical) }
func (p DataPoint) NumNumerical() int              { return len(p.Numerical) }

func New(predicting CategoricalAttribute, categorical []CategoricalAttribute, numerical []string) *DataSet {
	return &DataSet{
		predicting:  predicting,
		categorical: categorical,
		numerical:   numerical,
		samples:     make([][]DataPoint, predicting.NumCategories()),
	}
}

// DataSet holds labelled samples grouped by class.
type DataSet struct {
	predicting  CategoricalAttribute
	categorical []CategoricalAttribute
	numerical   []string
	samples     [][]DataPoint
}

// Add appends p to the samples of class after checking it against the declared attributes.
func (d *DataSet) Add(class int, p DataPoint) error {
	if class < 0 || class >= len(d.samples) {
		return fmt.Errorf("%w: class %d of %d", ErrCategoryOutOfRange, class, len(d.samples))
	}
	if err := d.Validate(p); err != nil {
		return err
	}
	d.samples[class] = append(d.samples[class], p)
	return nil
}

// Validate checks that p has the declared dimensions and category ranges.
func (d *DataSet) Validate(p classifier.Example) error {
	return Validate(p, d.CategoryCounts(), len(d.numerical))
}

// Validate checks an example against category counts and a numerical dimension.
func Validate(p classifier.Example, categoryCounts []int, numNumerical int) error {
	if p.NumCategorical() != len(categoryCounts) {
		return fmt.Errorf("%w: %d categorical values, expected %d",
			ErrDimensionMismatch, p.NumCategorical(), len(categoryCounts))
	}
	if p.NumNumerical() != numNumerical {
		return fmt.Errorf("%w: %d numerical values, expected %d",
			ErrDimensionMismatch, p.NumNumerical(), numNumerical)
	}
	for i, k := range categoryCounts {
		if v := p.CategoricalValue(i); v < 0 || v >= k {
			return fmt.Errorf("%w: feature %d value %d of %d", ErrCategoryOutOfRange, i, v, k)
		}
	}
	return nil
}

func (d *DataSet) Predicting() CategoricalAttribute {
	return d.predicting
}

func (d *DataSet) Categorical() []CategoricalAttribute {
	return d.categorical
}

func (d *DataSet) Numerical() []string {
	return d.numerical
}

func (d *DataSet) NumClasses() int {
	return len(d.samples)
}

func (d *DataSet) Samples(class int) []classifier.Example {
	out := make([]classifier.Example, len(d.samples[class]))
	for i := range d.samples[class] {
		out[i] = d.samples[class][i]
	}
	return out
}

func (d *DataSet) NumCategoricalVars() int {
	return len(d.categorical)
}

func (d *DataSet) CategoryCounts() []int {
	out := make([]int, len(d.categorical))
	for i := range d.categorical {
		out[i] = d.categorical[i].NumCategories()
	}
	return out
}

func (d *DataSet) NumNumericalVars() int {
	return len(d.numerical)
}

func (d *DataSet) SampleVariableVector(class, idx int) []float64 {
	out := make([]float64, len(d.samples[class]))
	for i := range d.samples[class] {
		out[i] = d.samples[class][i].Numerical[idx]
	}
	return out
}

// Len returns the total number of samples.
func (d *DataSet) Len() int {
	var n int
	for i := range d.samples {
		n += len(d.samples[i])
	}
	return n
}
