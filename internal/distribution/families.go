package distribution

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	_ Distribution = (*Normal)(nil)
	_ Distribution = (*Exponential)(nil)
	_ Distribution = (*Uniform)(nil)
	_ Distribution = (*LogNormal)(nil)
	_ Distribution = (*Gamma)(nil)
	_ Distribution = (*Laplace)(nil)
)

// quantile guards fn, which panics for p outside of [0, 1].
func quantile(p float64, fn func(float64) float64) float64 {
	if !(p >= 0 && p <= 1) {
		return math.NaN()
	}
	return fn(p)
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Normal

type NormalFamily struct {
	// MinStdDev floors the fitted standard deviation. Zero rejects zero-variance samples.
	MinStdDev float64
}

func (NormalFamily) Name() string { return NameNormal }

func (f NormalFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	mean, std := sample[0], 0.0
	if len(sample) > 1 {
		mean, std = stat.MeanStdDev(sample, nil)
	}
	if !finite(mean) {
		return nil, ErrDegenerateSample
	}
	if !finite(std) || std < f.MinStdDev {
		std = f.MinStdDev
	}
	if std <= 0 {
		return nil, ErrDegenerateSample
	}
	return &Normal{d: distuv.Normal{Mu: mean, Sigma: std}}, nil
}

func newNormal(params []float64) (Distribution, error) {
	if err := checkParams(params, 2); err != nil {
		return nil, err
	}
	if !finite(params...) || params[1] <= 0 {
		return nil, ErrBadParams
	}
	return &Normal{d: distuv.Normal{Mu: params[0], Sigma: params[1]}}, nil
}

type Normal struct {
	d distuv.Normal
}

func (n *Normal) Name() string             { return NameNormal }
func (n *Normal) Pdf(x float64) float64    { return n.d.Prob(x) }
func (n *Normal) LogPdf(x float64) float64 { return n.d.LogProb(x) }
func (n *Normal) Cdf(x float64) float64    { return n.d.CDF(x) }
func (n *Normal) Quantile(p float64) float64 { return quantile(p, n.d.Quantile) }
func (n *Normal) Min() float64             { return math.Inf(-1) }
func (n *Normal) Max() float64             { return math.Inf(1) }
func (n *Normal) Mean() float64            { return n.d.Mu }
func (n *Normal) Variance() float64        { return n.d.Sigma * n.d.Sigma }
func (n *Normal) Params() []float64        { return []float64{n.d.Mu, n.d.Sigma} }
func (n *Normal) Copy() Distribution       { return &Normal{d: distuv.Normal{Mu: n.d.Mu, Sigma: n.d.Sigma}} }

// Exponential

type ExponentialFamily struct{}

func (ExponentialFamily) Name() string { return NameExponential }

func (ExponentialFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	if floats.Min(sample) < 0 {
		return nil, ErrOutOfSupport
	}
	mean := stat.Mean(sample, nil)
	if !finite(mean) || mean <= 0 {
		return nil, ErrDegenerateSample
	}
	return &Exponential{d: distuv.Exponential{Rate: 1 / mean}}, nil
}

func newExponential(params []float64) (Distribution, error) {
	if err := checkParams(params, 1); err != nil {
		return nil, err
	}
	if !finite(params...) || params[0] <= 0 {
		return nil, ErrBadParams
	}
	return &Exponential{d: distuv.Exponential{Rate: params[0]}}, nil
}

type Exponential struct {
	d distuv.Exponential
}

func (e *Exponential) Name() string { return NameExponential }

func (e *Exponential) Pdf(x float64) float64 {
	if x < 0 {
		return 0
	}
	return e.d.Prob(x)
}

func (e *Exponential) LogPdf(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return e.d.LogProb(x)
}

func (e *Exponential) Cdf(x float64) float64 {
	if x < 0 {
		return 0
	}
	return e.d.CDF(x)
}

func (e *Exponential) Quantile(p float64) float64 { return quantile(p, e.d.Quantile) }

func (e *Exponential) Min() float64       { return 0 }
func (e *Exponential) Max() float64       { return math.Inf(1) }
func (e *Exponential) Mean() float64      { return 1 / e.d.Rate }
func (e *Exponential) Variance() float64  { return 1 / (e.d.Rate * e.d.Rate) }
func (e *Exponential) Params() []float64  { return []float64{e.d.Rate} }
func (e *Exponential) Copy() Distribution { return &Exponential{d: distuv.Exponential{Rate: e.d.Rate}} }

// Uniform

type UniformFamily struct{}

func (UniformFamily) Name() string { return NameUniform }

func (UniformFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	lo, hi := floats.Min(sample), floats.Max(sample)
	if !finite(lo, hi) || lo >= hi {
		return nil, ErrDegenerateSample
	}
	return &Uniform{d: distuv.Uniform{Min: lo, Max: hi}}, nil
}

func newUniform(params []float64) (Distribution, error) {
	if err := checkParams(params, 2); err != nil {
		return nil, err
	}
	if !finite(params...) || params[0] >= params[1] {
		return nil, ErrBadParams
	}
	return &Uniform{d: distuv.Uniform{Min: params[0], Max: params[1]}}, nil
}

type Uniform struct {
	d distuv.Uniform
}

func (u *Uniform) Name() string { return NameUniform }

func (u *Uniform) Pdf(x float64) float64 {
	if x < u.d.Min || x > u.d.Max {
		return 0
	}
	return 1 / (u.d.Max - u.d.Min)
}

func (u *Uniform) LogPdf(x float64) float64 {
	if x < u.d.Min || x > u.d.Max {
		return math.Inf(-1)
	}
	return -math.Log(u.d.Max - u.d.Min)
}

func (u *Uniform) Cdf(x float64) float64 {
	switch {
	case x <= u.d.Min:
		return 0
	case x >= u.d.Max:
		return 1
	}
	return u.d.CDF(x)
}

func (u *Uniform) Quantile(p float64) float64 { return quantile(p, u.d.Quantile) }

func (u *Uniform) Min() float64       { return u.d.Min }
func (u *Uniform) Max() float64       { return u.d.Max }
func (u *Uniform) Mean() float64      { return (u.d.Min + u.d.Max) / 2 }
func (u *Uniform) Params() []float64  { return []float64{u.d.Min, u.d.Max} }
func (u *Uniform) Copy() Distribution { return &Uniform{d: distuv.Uniform{Min: u.d.Min, Max: u.d.Max}} }

func (u *Uniform) Variance() float64 {
	w := u.d.Max - u.d.Min
	return w * w / 12
}

// LogNormal

type LogNormalFamily struct{}

func (LogNormalFamily) Name() string { return NameLogNormal }

func (LogNormalFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) < 2 {
		if len(sample) == 0 {
			return nil, ErrEmptySample
		}
		return nil, ErrDegenerateSample
	}
	logs := make([]float64, len(sample))
	for i, x := range sample {
		if x <= 0 {
			return nil, ErrOutOfSupport
		}
		logs[i] = math.Log(x)
	}
	mu, sigma := stat.MeanStdDev(logs, nil)
	if !finite(mu, sigma) || sigma <= 0 {
		return nil, ErrDegenerateSample
	}
	return &LogNormal{d: distuv.LogNormal{Mu: mu, Sigma: sigma}}, nil
}

func newLogNormal(params []float64) (Distribution, error) {
	if err := checkParams(params, 2); err != nil {
		return nil, err
	}
	if !finite(params...) || params[1] <= 0 {
		return nil, ErrBadParams
	}
	return &LogNormal{d: distuv.LogNormal{Mu: params[0], Sigma: params[1]}}, nil
}

type LogNormal struct {
	d distuv.LogNormal
}

func (l *LogNormal) Name() string { return NameLogNormal }

func (l *LogNormal) Pdf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return l.d.Prob(x)
}

func (l *LogNormal) LogPdf(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return l.d.LogProb(x)
}

func (l *LogNormal) Cdf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return l.d.CDF(x)
}

func (l *LogNormal) Quantile(p float64) float64 { return quantile(p, l.d.Quantile) }

func (l *LogNormal) Min() float64      { return 0 }
func (l *LogNormal) Max() float64      { return math.Inf(1) }
func (l *LogNormal) Mean() float64     { return l.d.Mean() }
func (l *LogNormal) Variance() float64 { return l.d.Variance() }
func (l *LogNormal) Params() []float64 { return []float64{l.d.Mu, l.d.Sigma} }
func (l *LogNormal) Copy() Distribution {
	return &LogNormal{d: distuv.LogNormal{Mu: l.d.Mu, Sigma: l.d.Sigma}}
}

// Gamma, fitted with the method of moments. Beta is the rate parameter.

type GammaFamily struct{}

func (GammaFamily) Name() string { return NameGamma }

func (GammaFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) < 2 {
		if len(sample) == 0 {
			return nil, ErrEmptySample
		}
		return nil, ErrDegenerateSample
	}
	if floats.Min(sample) <= 0 {
		return nil, ErrOutOfSupport
	}
	mean, variance := stat.MeanVariance(sample, nil)
	if !finite(mean, variance) || variance <= 0 {
		return nil, ErrDegenerateSample
	}
	return &Gamma{d: distuv.Gamma{Alpha: mean * mean / variance, Beta: mean / variance}}, nil
}

func newGamma(params []float64) (Distribution, error) {
	if err := checkParams(params, 2); err != nil {
		return nil, err
	}
	if !finite(params...) || params[0] <= 0 || params[1] <= 0 {
		return nil, ErrBadParams
	}
	return &Gamma{d: distuv.Gamma{Alpha: params[0], Beta: params[1]}}, nil
}

type Gamma struct {
	d distuv.Gamma
}

func (g *Gamma) Name() string { return NameGamma }

func (g *Gamma) Pdf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return g.d.Prob(x)
}

func (g *Gamma) LogPdf(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return g.d.LogProb(x)
}

func (g *Gamma) Cdf(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return g.d.CDF(x)
}

func (g *Gamma) Quantile(p float64) float64 { return quantile(p, g.d.Quantile) }

func (g *Gamma) Min() float64       { return 0 }
func (g *Gamma) Max() float64       { return math.Inf(1) }
func (g *Gamma) Mean() float64      { return g.d.Alpha / g.d.Beta }
func (g *Gamma) Variance() float64  { return g.d.Alpha / (g.d.Beta * g.d.Beta) }
func (g *Gamma) Params() []float64  { return []float64{g.d.Alpha, g.d.Beta} }
func (g *Gamma) Copy() Distribution { return &Gamma{d: distuv.Gamma{Alpha: g.d.Alpha, Beta: g.d.Beta}} }

// Laplace, located at the sample median with the mean absolute deviation as scale.

type LaplaceFamily struct{}

func (LaplaceFamily) Name() string { return NameLaplace }

func (LaplaceFamily) Fit(sample []float64) (Distribution, error) {
	if len(sample) < 2 {
		if len(sample) == 0 {
			return nil, ErrEmptySample
		}
		return nil, ErrDegenerateSample
	}
	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)
	mu := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	var scale float64
	for _, x := range sorted {
		scale += math.Abs(x - mu)
	}
	scale /= float64(len(sorted))
	if !finite(mu, scale) || scale <= 0 {
		return nil, ErrDegenerateSample
	}
	return &Laplace{d: distuv.Laplace{Mu: mu, Scale: scale}}, nil
}

func newLaplace(params []float64) (Distribution, error) {
	if err := checkParams(params, 2); err != nil {
		return nil, err
	}
	if !finite(params...) || params[1] <= 0 {
		return nil, ErrBadParams
	}
	return &Laplace{d: distuv.Laplace{Mu: params[0], Scale: params[1]}}, nil
}

type Laplace struct {
	d distuv.Laplace
}

func (l *Laplace) Name() string             { return NameLaplace }
func (l *Laplace) Pdf(x float64) float64    { return l.d.Prob(x) }
func (l *Laplace) LogPdf(x float64) float64 { return l.d.LogProb(x) }
func (l *Laplace) Cdf(x float64) float64    { return l.d.CDF(x) }
func (l *Laplace) Quantile(p float64) float64 { return quantile(p, l.d.Quantile) }
func (l *Laplace) Min() float64             { return math.Inf(-1) }
func (l *Laplace) Max() float64             { return math.Inf(1) }
func (l *Laplace) Mean() float64            { return l.d.Mu }
func (l *Laplace) Variance() float64        { return 2 * l.d.Scale * l.d.Scale }
func (l *Laplace) Params() []float64        { return []float64{l.d.Mu, l.d.Scale} }
func (l *Laplace) Copy() Distribution {
	return &Laplace{d: distuv.Laplace{Mu: l.d.Mu, Scale: l.d.Scale}}
}
