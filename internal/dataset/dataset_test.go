package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataSet() *DataSet {
	return New(
		CategoricalAttribute{Name: "label", Categories: []string{"a", "b"}},
		[]CategoricalAttribute{{Name: "color", Categories: []string{"red", "green", "blue"}}},
		[]string{"weight"},
	)
}

func TestDataSet_Add(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		class int
		point DataPoint
		err   error
	}{
		{name: "positive", class: 0, point: DataPoint{Categorical: []int{2}, Numerical: []float64{1.5}}},
		{name: "bad_class", class: 2, point: DataPoint{Categorical: []int{0}, Numerical: []float64{1}}, err: ErrCategoryOutOfRange},
		{name: "bad_category", class: 1, point: DataPoint{Categorical: []int{3}, Numerical: []float64{1}}, err: ErrCategoryOutOfRange},
		{name: "negative_category", class: 1, point: DataPoint{Categorical: []int{-1}, Numerical: []float64{1}}, err: ErrCategoryOutOfRange},
		{name: "short_numerical", class: 1, point: DataPoint{Categorical: []int{0}}, err: ErrDimensionMismatch},
		{name: "long_categorical", class: 1, point: DataPoint{Categorical: []int{0, 1}, Numerical: []float64{1}}, err: ErrDimensionMismatch},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := testDataSet().Add(test.class, test.point)
			if test.err == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, test.err), "got: %v, expected: %v", err, test.err)
		})
	}
}

func TestDataSet_Accessors(t *testing.T) {
	t.Parallel()
	ds := testDataSet()
	require.NoError(t, ds.Add(0, DataPoint{Categorical: []int{0}, Numerical: []float64{1}}))
	require.NoError(t, ds.Add(0, DataPoint{Categorical: []int{1}, Numerical: []float64{2}}))
	require.NoError(t, ds.Add(1, DataPoint{Categorical: []int{2}, Numerical: []float64{3}}))

	assert.Equal(t, 2, ds.NumClasses())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 1, ds.NumCategoricalVars())
	assert.Equal(t, 1, ds.NumNumericalVars())
	assert.Equal(t, []int{3}, ds.CategoryCounts())
	assert.Equal(t, []float64{1, 2}, ds.SampleVariableVector(0, 0))
	assert.Equal(t, []float64{3}, ds.SampleVariableVector(1, 0))
	require.Len(t, ds.Samples(0), 2)
	assert.Equal(t, 1, ds.Samples(0)[1].CategoricalValue(0))
}

func TestCategoricalAttribute_Index(t *testing.T) {
	t.Parallel()
	attr := CategoricalAttribute{Name: "color", Categories: []string{"red", "green"}}
	idx, err := attr.Index("green")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, err = attr.Index("purple")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}
