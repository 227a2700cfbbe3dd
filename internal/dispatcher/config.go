package dispatcher

import (
	"time"
)

type Config struct {
	// Number of trained models kept decoded in memory
	CacheSize int `envconfig:"NBAYES_MODEL_CACHE_SIZE" default:"64"`
	// Timer for performing retention in the DB
	RebuildDBTime time.Duration `envconfig:"NBAYES_REBUILD_DB_TIME" default:"1m"`
	// maximum number of stored models, least recently used are deleted first
	MaxModels int `envconfig:"NBAYES_MAX_MODELS" default:"0"`
	// models unused for longer are deleted
	MaxIdle time.Duration `envconfig:"NBAYES_MAX_IDLE" default:"0s"`
	// Buffer size of the usage tracker that triggers a flush to disk
	UsageFlushSize int `envconfig:"NBAYES_USAGE_FLUSH_SIZE" default:"128"`
	// Lifetime of the usage tracker buffer before it is flushed to disk
	UsageFlushTime time.Duration `envconfig:"NBAYES_USAGE_FLUSH_TIME" default:"10s"`
	// Load stored models into memory on start
	Preload bool `envconfig:"NBAYES_PRELOAD" default:"true"`
}

// Options converts the config into manager options.
func (c Config) Options() []Option {
	return []Option{
		WithCacheSize(c.CacheSize),
		WithRebuildDBTime(c.RebuildDBTime),
		WithMaxModels(c.MaxModels),
		WithMaxIdle(c.MaxIdle),
		WithUsageFlushSize(c.UsageFlushSize),
		WithUsageFlushTime(c.UsageFlushTime),
		WithPreload(c.Preload),
	}
}
