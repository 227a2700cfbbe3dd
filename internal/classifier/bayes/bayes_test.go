package bayes

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/distribution"
	"github.com/go-sod/nbayes/pkg/rworker"
)

const eps = 1e-9

// twoClassDataSet has class A with three category-0 samples at 1 and class B with one category-1
// sample at 10.
func twoClassDataSet(t *testing.T) *dataset.DataSet {
	t.Helper()
	ds := dataset.New(
		dataset.CategoricalAttribute{Name: "class", Categories: []string{"A", "B"}},
		[]dataset.CategoricalAttribute{{Name: "kind", Categories: []string{"x", "y"}}},
		[]string{"value"},
	)
	for i := 0; i < 3; i++ {
		require.NoError(t, ds.Add(0, dataset.DataPoint{Categorical: []int{0}, Numerical: []float64{1}}))
	}
	require.NoError(t, ds.Add(1, dataset.DataPoint{Categorical: []int{1}, Numerical: []float64{10}}))
	return ds
}

// spreadDataSet has three classes, two categorical and two numerical features with varied samples.
func spreadDataSet(t *testing.T) *dataset.DataSet {
	t.Helper()
	ds := dataset.New(
		dataset.CategoricalAttribute{Name: "class", Categories: []string{"a", "b", "c"}},
		[]dataset.CategoricalAttribute{
			{Name: "color", Categories: []string{"red", "green", "blue"}},
			{Name: "size", Categories: []string{"s", "m", "l", "xl"}},
		},
		[]string{"weight", "height"},
	)
	for c := 0; c < 3; c++ {
		for i := 0; i < 40; i++ {
			p := dataset.DataPoint{
				Categorical: []int{(i + c) % 3, (i * (c + 1)) % 4},
				Numerical:   []float64{float64(c*10) + float64(i%7)*0.5 + 1, float64(i)*0.25 + float64(c) + 0.5},
			}
			require.NoError(t, ds.Add(c, p))
		}
	}
	return ds
}

func TestNaiveBayes_TwoClassScenario(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), twoClassDataSet(t))
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.8, 0.2}, m.CategoricalTable(0, 0), eps)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, m.CategoricalTable(1, 0), eps)

	got, err := m.Classify(dataset.DataPoint{Categorical: []int{0}, Numerical: []float64{1}})
	require.NoError(t, err)
	assert.Equal(t, 0, got.MostLikely())
	assert.Greater(t, got.Prob(0), 0.99)
	assert.InDelta(t, 1, got.Sum(), eps)
}

func TestNaiveBayes_TablesSumToOne(t *testing.T) {
	t.Parallel()
	ds := spreadDataSet(t)
	m, err := New(WithWorkers(4)).Fit(context.Background(), ds)
	require.NoError(t, err)

	for c := 0; c < m.NumClasses(); c++ {
		for f, k := range ds.CategoryCounts() {
			table := m.CategoricalTable(c, f)
			require.Len(t, table, k)
			var sum float64
			for _, p := range table {
				assert.Greater(t, p, 0.0)
				sum += p
			}
			assert.InDelta(t, 1, sum, eps, "class %d feature %d", c, f)
		}
	}
}

func TestNaiveBayes_UnobservedCategory(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), twoClassDataSet(t))
	require.NoError(t, err)
	// class A never saw category 1: 1/(N+K) with N=3, K=2
	assert.InDelta(t, 1.0/5, m.CategoricalTable(0, 0)[1], eps)
}

func TestNaiveBayes_ParallelMatchesSync(t *testing.T) {
	t.Parallel()
	ds := spreadDataSet(t)

	serial, err := New(WithWorkers(0)).Fit(context.Background(), ds)
	require.NoError(t, err)
	parallel, err := New(WithWorkers(8)).Fit(context.Background(), ds)
	require.NoError(t, err)

	if !assert.Equal(t, serial.Snapshot(), parallel.Snapshot()) {
		t.Logf("sync: %s\nparallel: %s", spew.Sdump(serial.Snapshot()), spew.Sdump(parallel.Snapshot()))
	}
}

func TestNaiveBayes_Errors(t *testing.T) {
	t.Parallel()
	empty := dataset.New(
		dataset.CategoricalAttribute{Name: "class", Categories: []string{"a", "b"}},
		nil,
		[]string{"x"},
	)
	require.NoError(t, empty.Add(0, dataset.DataPoint{Numerical: []float64{1}}))

	noClasses := dataset.New(dataset.CategoricalAttribute{Name: "class"}, nil, nil)

	tests := []struct {
		name string
		nb   *NaiveBayes
		data *dataset.DataSet
		err  error
	}{
		{name: "no_classes", nb: New(), data: noClasses, err: ErrEmptyDataSet},
		{name: "empty_class", nb: New(), data: empty, err: ErrEmptyClass},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			m, err := test.nb.Fit(context.Background(), test.data)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, test.err), "got: %v, expected: %v", err, test.err)
		})
	}
}

func TestNaiveBayes_FitFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	tests := []struct {
		name  string
		fitFn distribution.FitFn
	}{
		{
			name: "error",
			fitFn: func(sample []float64) (distribution.Distribution, error) {
				if sample[0] == 10 {
					return nil, boom
				}
				return distribution.NewSearch().Fit(sample)
			},
		},
		{
			name: "panic",
			fitFn: func(sample []float64) (distribution.Distribution, error) {
				if sample[0] == 10 {
					panic("pathological sample")
				}
				return distribution.NewSearch().Fit(sample)
			},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			m, err := New(WithFitFn(test.fitFn), WithWorkers(2)).Fit(context.Background(), twoClassDataSet(t))
			require.Error(t, err)
			assert.Nil(t, m)

			var fitErr *FitError
			require.True(t, errors.As(err, &fitErr), "got: %v", err)
			assert.Equal(t, 1, fitErr.Class)
			assert.Equal(t, 0, fitErr.Feature)
		})
	}
}

func TestNaiveBayes_TrainTimeout(t *testing.T) {
	t.Parallel()
	slow := func(sample []float64) (distribution.Distribution, error) {
		time.Sleep(200 * time.Millisecond)
		return distribution.NewSearch().Fit(sample)
	}
	m, err := New(WithFitFn(slow), WithWorkers(1), WithTrainTimeout(10*time.Millisecond)).
		Fit(context.Background(), twoClassDataSet(t))
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, rworker.ErrWaitTimeout), "got: %v", err)
}

func TestNaiveBayes_Interrupted(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := New(WithWorkers(0)).Fit(ctx, twoClassDataSet(t))
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, rworker.ErrWaitInterrupted), "got: %v", err)
}

func TestModel_ClassifyFarOutlier(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), twoClassDataSet(t))
	require.NoError(t, err)

	for _, x := range []float64{1e6, -1e6, math.MaxFloat64} {
		got, err := m.Classify(dataset.DataPoint{Categorical: []int{0}, Numerical: []float64{x}})
		require.NoError(t, err)
		for _, p := range got.Probabilities {
			assert.False(t, math.IsNaN(p))
			assert.GreaterOrEqual(t, p, 0.0)
		}
		sum := got.Sum()
		assert.True(t, sum == 0 || math.Abs(sum-1) < eps, "sum %v for %v", sum, x)
		if sum == 0 {
			assert.True(t, got.Indeterminate())
		}
	}
}

func TestModel_ClassifyMicroScaleFeatures(t *testing.T) {
	t.Parallel()
	const features = 40
	names := make([]string, features)
	for g := range names {
		names[g] = "f"
	}
	ds := dataset.New(dataset.CategoricalAttribute{Name: "class", Categories: []string{"a", "b"}}, nil, names)
	for i := 0; i < 10; i++ {
		a := make([]float64, features)
		b := make([]float64, features)
		for g := range a {
			a[g] = 1e-6 + float64(i%5)*1e-9
			b[g] = 2e-6 + float64(i%5)*1e-9
		}
		require.NoError(t, ds.Add(0, dataset.DataPoint{Numerical: a}))
		require.NoError(t, ds.Add(1, dataset.DataPoint{Numerical: b}))
	}
	m, err := New().Fit(context.Background(), ds)
	require.NoError(t, err)

	query := make([]float64, features)
	for g := range query {
		query[g] = 1e-6 + 2e-9
	}
	got, err := m.Classify(dataset.DataPoint{Numerical: query})
	require.NoError(t, err)
	for _, p := range got.Probabilities {
		require.False(t, math.IsNaN(p), "probabilities: %v", got.Probabilities)
		require.False(t, math.IsInf(p, 0), "probabilities: %v", got.Probabilities)
	}
	assert.InDelta(t, 1.0, got.Sum(), eps)
	assert.Equal(t, 0, got.MostLikely())
}

func TestModel_ClassifyInvalid(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), twoClassDataSet(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		point dataset.DataPoint
		err   error
	}{
		{name: "missing_numerical", point: dataset.DataPoint{Categorical: []int{0}}, err: ErrDimensionMismatch},
		{name: "extra_categorical", point: dataset.DataPoint{Categorical: []int{0, 1}, Numerical: []float64{1}}, err: ErrDimensionMismatch},
		{name: "category_out_of_range", point: dataset.DataPoint{Categorical: []int{2}, Numerical: []float64{1}}, err: ErrCategoryOutOfRange},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := m.Classify(test.point)
			assert.True(t, errors.Is(err, test.err), "got: %v, expected: %v", err, test.err)
		})
	}
}

func TestModel_ClassifyIdempotentAndConcurrent(t *testing.T) {
	t.Parallel()
	m, err := New(WithWorkers(4)).Fit(context.Background(), spreadDataSet(t))
	require.NoError(t, err)
	query := dataset.DataPoint{Categorical: []int{1, 2}, Numerical: []float64{12, 3}}

	first, err := m.Classify(query)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]float64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.Classify(query)
			if err == nil {
				results[i] = c.Probabilities
			}
		}(i)
	}
	wg.Wait()
	for i := range results {
		assert.Equal(t, first.Probabilities, results[i])
	}
}

func TestModel_CloneIndependence(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), twoClassDataSet(t))
	require.NoError(t, err)
	query := dataset.DataPoint{Categorical: []int{1}, Numerical: []float64{10}}
	before, err := m.Classify(query)
	require.NoError(t, err)

	clone := m.Clone()
	clone.apriori[0][0][1] = 0.99
	clone.apriori[1][0][1] = 0.01
	clone.distributions[1][0] = clone.distributions[0][0]

	after, err := m.Classify(query)
	require.NoError(t, err)
	assert.Equal(t, before.Probabilities, after.Probabilities)

	changed, err := clone.Classify(query)
	require.NoError(t, err)
	assert.NotEqual(t, before.Probabilities, changed.Probabilities)

	copied, ok := m.Copy().(*Model)
	require.True(t, ok)
	assert.Equal(t, m.Snapshot(), copied.Snapshot())
	assert.False(t, m.SupportsWeightedData())
}

func TestModel_Snapshot(t *testing.T) {
	t.Parallel()
	m, err := New().Fit(context.Background(), spreadDataSet(t))
	require.NoError(t, err)

	restored, err := FromSnapshot(m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), restored.Snapshot())

	query := dataset.DataPoint{Categorical: []int{0, 3}, Numerical: []float64{22, 7}}
	want, err := m.Classify(query)
	require.NoError(t, err)
	got, err := restored.Classify(query)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Probabilities, got.Probabilities, eps)
}

func TestFromSnapshot_Errors(t *testing.T) {
	t.Parallel()
	valid := func() Snapshot {
		return Snapshot{
			CategoryCounts: []int{2},
			NumNumerical:   1,
			Tables:         [][][]float64{{{0.5, 0.5}}},
			Distributions:  [][]DistributionSnapshot{{{Name: distribution.NameNormal, Params: []float64{0, 1}}}},
		}
	}
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{name: "no_classes", mutate: func(s *Snapshot) { s.Tables = nil }},
		{name: "short_distributions", mutate: func(s *Snapshot) { s.Distributions = nil }},
		{name: "table_length", mutate: func(s *Snapshot) { s.Tables[0][0] = []float64{1} }},
		{name: "table_sum", mutate: func(s *Snapshot) { s.Tables[0][0] = []float64{0.5, 0.6} }},
		{name: "zero_probability", mutate: func(s *Snapshot) { s.Tables[0][0] = []float64{0, 1} }},
		{name: "unknown_family", mutate: func(s *Snapshot) { s.Distributions[0][0].Name = "Cauchy" }},
		{name: "bad_params", mutate: func(s *Snapshot) { s.Distributions[0][0].Params = []float64{0, -1} }},
		{name: "negative_numerical", mutate: func(s *Snapshot) {
			s.NumNumerical = -1
			s.Distributions = [][]DistributionSnapshot{{}}
		}},
		{name: "negative_category_count", mutate: func(s *Snapshot) {
			s.CategoryCounts = []int{-1}
			s.Tables = [][][]float64{{{}}}
		}},
		{name: "zero_category_count", mutate: func(s *Snapshot) {
			s.CategoryCounts = []int{0}
			s.Tables = [][][]float64{{{}}}
		}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			s := valid()
			test.mutate(&s)
			_, err := FromSnapshot(s)
			assert.True(t, errors.Is(err, ErrBadSnapshot), "got: %v", err)
		})
	}
}
