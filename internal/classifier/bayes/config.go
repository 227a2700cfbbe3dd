package bayes

import (
	"time"

	"github.com/go-sod/nbayes/internal/distribution"
)

type Config struct {
	// Workers is the size of the fitting pool. Zero fits every cell on the calling goroutine.
	Workers          int           `envconfig:"NBAYES_BAYES_WORKERS" default:"4"`
	TrainTimeout     time.Duration `envconfig:"NBAYES_TRAIN_TIMEOUT" default:"2m"`
	MaxSearchSamples int           `envconfig:"NBAYES_BAYES_MAX_SEARCH_SAMPLES" default:"2000"`
	MinStdDev        float64       `envconfig:"NBAYES_BAYES_MIN_STDDEV" default:"0.001"`
}

// Options converts the config into trainer options.
func (c Config) Options() []Option {
	search := distribution.NewSearch(
		distribution.WithMaxSearchSamples(c.MaxSearchSamples),
		distribution.WithFallback(distribution.NormalFamily{MinStdDev: c.MinStdDev}),
	)
	return []Option{
		WithWorkers(c.Workers),
		WithTrainTimeout(c.TrainTimeout),
		WithFitFn(search.Fit),
	}
}
