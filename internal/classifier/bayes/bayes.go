// Package bayes implements a Naive Bayes classifier over mixed categorical and numerical features.
// Categorical features are modelled with Laplace-smoothed frequency tables and every numerical
// feature gets its own fitted distribution per class.
package bayes

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/distribution"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/pkg/rworker"
)

var _ classifier.Trainer = (*NaiveBayes)(nil)

type Option func(*NaiveBayes)

// WithFitFn sets the factory that selects and fits the distribution of every numerical cell.
func WithFitFn(fn distribution.FitFn) Option {
	return func(nb *NaiveBayes) {
		nb.fitFn = fn
	}
}

// WithExecutor sets the engine factory. A fresh executor is created for every Fit call.
func WithExecutor(fn func() rworker.Executor) Option {
	return func(nb *NaiveBayes) {
		nb.executor = fn
	}
}

// WithWorkers runs fitting units on a pool of n goroutines, or synchronously when n is zero.
func WithWorkers(n int) Option {
	return func(nb *NaiveBayes) {
		if n <= 0 {
			nb.executor = func() rworker.Executor { return rworker.NewSync() }
			return
		}
		nb.executor = func() rworker.Executor { return rworker.NewPool(n) }
	}
}

func WithTrainTimeout(d time.Duration) Option {
	return func(nb *NaiveBayes) {
		nb.trainTimeout = d
	}
}

func New(opts ...Option) *NaiveBayes {
	nb := &NaiveBayes{
		fitFn:    distribution.NewSearch().Fit,
		executor: func() rworker.Executor { return rworker.NewSync() },
	}
	for _, f := range opts {
		f(nb)
	}
	return nb
}

func NewProvideFn(opts ...Option) classifier.ProvideFn {
	return func() (classifier.Trainer, error) {
		return New(opts...), nil
	}
}

// NaiveBayes is an untrained classifier. It holds training options only, Fit produces the model.
type NaiveBayes struct {
	fitFn        distribution.FitFn
	executor     func() rworker.Executor
	trainTimeout time.Duration
}

func (nb *NaiveBayes) SupportsWeightedData() bool {
	return false
}

func (nb *NaiveBayes) Train(ctx context.Context, data classifier.DataSet) (classifier.Classifier, error) {
	m, err := nb.Fit(ctx, data)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Fit trains a model using a new executor from the configured factory.
func (nb *NaiveBayes) Fit(ctx context.Context, data classifier.DataSet) (*Model, error) {
	return nb.FitWith(ctx, data, nb.executor())
}

// FitWith trains a model dispatching one unit per (class, feature) cell on exec. The model is
// returned only after every unit finished without error.
func (nb *NaiveBayes) FitWith(ctx context.Context, data classifier.DataSet, exec rworker.Executor) (*Model, error) {
	numClasses := data.NumClasses()
	if numClasses == 0 {
		return nil, ErrEmptyDataSet
	}

	samples := make([][]classifier.Example, numClasses)
	for c := 0; c < numClasses; c++ {
		samples[c] = data.Samples(c)
		if len(samples[c]) == 0 {
			return nil, fmt.Errorf("%w: class %d", ErrEmptyClass, c)
		}
	}

	if nb.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nb.trainTimeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	categoryCounts := data.CategoryCounts()
	numNumerical := data.NumNumericalVars()
	m := newModel(numClasses, categoryCounts, numNumerical)

	for c := 0; c < numClasses; c++ {
		for f, k := range categoryCounts {
			c, f, k := c, f, k
			exec.Go(func() error {
				table, err := fitCategorical(samples[c], f, k)
				if err != nil {
					return fmt.Errorf("class %d categorical feature %d: %w", c, f, err)
				}
				m.apriori[c][f] = table
				return nil
			})
		}
		for g := 0; g < numNumerical; g++ {
			c, g := c, g
			exec.Go(func() error {
				d, err := nb.fitNumerical(data.SampleVariableVector(c, g))
				if err != nil {
					return &FitError{Class: c, Feature: g, Err: err}
				}
				m.distributions[c][g] = d
				return nil
			})
		}
	}

	if err := exec.Wait(ctx); err != nil {
		return nil, fmt.Errorf("bayes: train: %w", err)
	}

	logger.Debugf("naive bayes trained: classes %d, categorical %d, numerical %d, took %v",
		numClasses, len(categoryCounts), numNumerical, time.Since(start))

	return m, nil
}

func (nb *NaiveBayes) fitNumerical(sample []float64) (d distribution.Distribution, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("fit panic: %v", r)
		}
	}()
	return nb.fitFn(sample)
}
