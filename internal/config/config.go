package nbayes

import (
	"github.com/go-sod/nbayes/internal/catalog"
	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/classify"
	"github.com/go-sod/nbayes/internal/database"
	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/metrics"
	"github.com/go-sod/nbayes/internal/model/cache"
	"github.com/go-sod/nbayes/internal/setup"
	"github.com/go-sod/nbayes/internal/train"
)

var (
	_ setup.ClassifierConfigProvider = (*Config)(nil)
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.CacheConfigProvider      = (*Config)(nil)
	_ setup.DispatcherConfigProvider = (*Config)(nil)
)

type Config struct {
	SrvAddr   string `envconfig:"NBAYES_ADDR" default:":8787"`
	GRPCAddr  string `envconfig:"NBAYES_GRPC_ADDR" default:":8788"`
	DebugAddr string `envconfig:"NBAYES_DEBUG_ADDR" default:""`
	// Upper bound of concurrently served HTTP connections, 0 disables the limit
	MaxConns int `envconfig:"NBAYES_MAX_CONNS" default:"1024"`

	Dispatcher dispatcher.Config
	Classifier classifier.Config
	Bayes      bayes.Config
	Database   database.Config
	Cache      cache.Config
	Metrics    metrics.Config
	Train      train.Config
	Classify   classify.Config
	Catalog    catalog.Config
}

func (c *Config) DispatcherConfig() *dispatcher.Config {
	return &c.Dispatcher
}

func (c *Config) ClassifierType() classifier.AlgType {
	return c.Classifier.Type
}

func (c *Config) BayesConfig() *bayes.Config {
	return &c.Bayes
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) CacheConfig() *cache.Config {
	return &c.Cache
}
