// Package distribution provides continuous probability distributions that can be fitted to a sample
// and a goodness-of-fit search that picks the best family for a given sample.
package distribution

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptySample      = errors.New("distribution: empty sample")
	ErrDegenerateSample = errors.New("distribution: degenerate sample")
	ErrOutOfSupport     = errors.New("distribution: sample outside of family support")
	ErrUnknownFamily    = errors.New("distribution: unknown family")
	ErrBadParams        = errors.New("distribution: bad parameters")
)

// Distribution is a fitted continuous distribution.
// Pdf returns 0 and LogPdf returns -Inf for values outside of the support.
type Distribution interface {
	Name() string
	Pdf(x float64) float64
	LogPdf(x float64) float64
	Cdf(x float64) float64
	// Quantile is the inverse of Cdf. It returns NaN for p outside of [0, 1].
	Quantile(p float64) float64
	Min() float64
	Max() float64
	Mean() float64
	Variance() float64
	// Params returns the parameters in the order New expects them.
	Params() []float64
	Copy() Distribution
}

// Family fits one kind of distribution to a sample.
type Family interface {
	Name() string
	Fit(sample []float64) (Distribution, error)
}

// FitFn returns the distribution describing sample.
type FitFn func(sample []float64) (Distribution, error)

const (
	NameNormal      = "Normal"
	NameExponential = "Exponential"
	NameUniform     = "Uniform"
	NameLogNormal   = "LogNormal"
	NameGamma       = "Gamma"
	NameLaplace     = "Laplace"
)

type newFn func(params []float64) (Distribution, error)

var constructors = map[string]newFn{
	NameNormal:      newNormal,
	NameExponential: newExponential,
	NameUniform:     newUniform,
	NameLogNormal:   newLogNormal,
	NameGamma:       newGamma,
	NameLaplace:     newLaplace,
}

// New rebuilds a distribution from its name and parameters.
func New(name string, params []float64) (Distribution, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, name)
	}
	d, err := fn(params)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s: %w", name, err)
	}
	return d, nil
}

// Median returns the 0.5 quantile of d.
func Median(d Distribution) float64 {
	return d.Quantile(0.5)
}

func StdDev(d Distribution) float64 {
	return math.Sqrt(d.Variance())
}

// Describe returns a short description such as "Normal[1 0.5]".
func Describe(d Distribution) string {
	return fmt.Sprintf("%s%v", d.Name(), d.Params())
}

func checkParams(params []float64, n int) error {
	if len(params) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrBadParams, n, len(params))
	}
	return nil
}
