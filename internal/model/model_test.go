package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/dataset"
)

func testRecord(t *testing.T) (Record, *dataset.DataSet) {
	t.Helper()
	ds := dataset.New(
		dataset.CategoricalAttribute{Name: "fruit", Categories: []string{"apple", "banana"}},
		[]dataset.CategoricalAttribute{{Name: "color", Categories: []string{"red", "yellow", "green"}}},
		[]string{"length"},
	)
	apples := []float64{7, 7.5, 8, 6.5, 7.2, 8.1}
	bananas := []float64{18, 20, 19.5, 17, 21, 22.5}
	for i := range apples {
		require.NoError(t, ds.Add(0, dataset.DataPoint{Categorical: []int{i % 2 * 2}, Numerical: []float64{apples[i]}}))
		require.NoError(t, ds.Add(1, dataset.DataPoint{Categorical: []int{1}, Numerical: []float64{bananas[i]}}))
	}
	m, err := bayes.New().Fit(context.Background(), ds)
	require.NoError(t, err)
	r, err := NewRecord("fruits", ds, m, time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return r, ds
}

func TestNewRecord(t *testing.T) {
	t.Parallel()
	r, ds := testRecord(t)
	assert.Equal(t, "fruits", r.Name)
	assert.Equal(t, 12, r.Samples)
	assert.Equal(t, Fingerprint(ds), r.Fingerprint)
	assert.Equal(t, []string{"apple", "banana"}, r.Summary().Classes)

	_, err := NewRecord("", ds, r.Model, time.Now())
	assert.True(t, errors.Is(err, ErrEmptyName))
}

func TestRecord_Point(t *testing.T) {
	t.Parallel()
	r, _ := testRecord(t)
	tests := []struct {
		name        string
		categorical []string
		numerical   []float64
		expected    []int
		err         error
	}{
		{name: "positive", categorical: []string{"green"}, numerical: []float64{7}, expected: []int{2}},
		{name: "unknown_category", categorical: []string{"blue"}, numerical: []float64{7}, err: dataset.ErrUnknownCategory},
		{name: "missing_categorical", numerical: []float64{7}, err: dataset.ErrDimensionMismatch},
		{name: "extra_numerical", categorical: []string{"red"}, numerical: []float64{7, 1}, err: dataset.ErrDimensionMismatch},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			p, err := r.Point(test.categorical, test.numerical)
			if test.err != nil {
				assert.True(t, errors.Is(err, test.err), "got: %v, expected: %v", err, test.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, p.Categorical)
			assert.Equal(t, test.numerical, p.Numerical)
		})
	}
}

func TestRecord_Labeled(t *testing.T) {
	t.Parallel()
	r, _ := testRecord(t)
	p, err := r.Point([]string{"yellow"}, []float64{19})
	require.NoError(t, err)
	c, err := r.Model.Classify(p)
	require.NoError(t, err)

	labeled := r.Labeled(c)
	require.Len(t, labeled, 2)
	assert.Greater(t, labeled["banana"], labeled["apple"])
}

func TestCodec(t *testing.T) {
	t.Parallel()
	r, _ := testRecord(t)

	data, err := Encode(r)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, r.ID, decoded.ID)
	assert.Equal(t, r.Name, decoded.Name)
	assert.True(t, r.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, r.Fingerprint, decoded.Fingerprint)
	assert.Equal(t, r.Samples, decoded.Samples)
	assert.Equal(t, r.Classes, decoded.Classes)
	assert.Equal(t, r.Categorical, decoded.Categorical)
	assert.Equal(t, r.Numerical, decoded.Numerical)
	assert.Equal(t, r.Model.Snapshot(), decoded.Model.Snapshot())
}

func TestCodec_Errors(t *testing.T) {
	t.Parallel()
	r, _ := testRecord(t)

	_, err := Encode(Record{Name: "empty"})
	assert.Error(t, err)

	data, err := Encode(r)
	require.NoError(t, err)
	_, err = Decode(data[:len(data)/2])
	assert.Error(t, err)

	corrupt := append([]byte(nil), data...)
	corrupt[3] = 9 // version
	_, err = Decode(corrupt)
	assert.Error(t, err)
}

func TestDecode_ShapeMismatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{name: "missing_class_label", mutate: func(r *Record) {
			r.Classes = dataset.CategoricalAttribute{Name: "fruit", Categories: []string{"apple"}}
		}},
		{name: "extra_class_label", mutate: func(r *Record) {
			r.Classes = dataset.CategoricalAttribute{Name: "fruit", Categories: []string{"apple", "banana", "cherry"}}
		}},
		{name: "missing_attribute", mutate: func(r *Record) { r.Categorical = nil }},
		{name: "category_count", mutate: func(r *Record) {
			r.Categorical = []dataset.CategoricalAttribute{{Name: "color", Categories: []string{"red"}}}
		}},
		{name: "numerical_names", mutate: func(r *Record) { r.Numerical = []string{"length", "width"} }},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			r, _ := testRecord(t)
			test.mutate(&r)
			data, err := Encode(r)
			require.NoError(t, err)
			_, err = Decode(data)
			assert.Error(t, err)
		})
	}
}
