package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/database"
	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/internal/model/cache"
	modelDb "github.com/go-sod/nbayes/internal/model/database"
	"github.com/go-sod/nbayes/internal/srvenv"
)

type ClassifierConfigProvider interface {
	ClassifierType() classifier.AlgType
	BayesConfig() *bayes.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type CacheConfigProvider interface {
	CacheConfig() *cache.Config
}

type DispatcherConfigProvider interface {
	DispatcherConfig() *dispatcher.Config
}

// Setup processes the environment into config and builds the resources its providers ask for.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db                  *database.DB
		modelCache          *cache.Cache
		classifierProvideFn classifier.ProvideFn
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if cacheConfigProvider, ok := config.(CacheConfigProvider); ok && cacheConfigProvider.CacheConfig().Enabled() {
		logger.Info("Configuring model cache")
		c, err := cache.New(ctx, cacheConfigProvider.CacheConfig())
		if err != nil {
			// the cache is optional, the service keeps working from the store
			logger.Warnf("model cache disabled: %v", err)
		} else {
			modelCache = c
			serverEnvOpts = append(serverEnvOpts, srvenv.WithCache(modelCache))
		}
	}

	if classifierConfigProvider, ok := config.(ClassifierConfigProvider); ok {
		logger.Info("Configuring classifier")
		provideFn, err := ProvideClassifierFor(classifierConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create classifier provide function: %w", err)
		}
		classifierProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithClassifier(classifierProvideFn))
	}

	if dispatcherConfigProvider, ok := config.(DispatcherConfigProvider); ok {
		logger.Info("Configuring dispatcher")
		if db == nil || classifierProvideFn == nil {
			return nil, fmt.Errorf("dispatcher requires database and classifier config")
		}
		provideFn := ProvideDispatcherFor(dispatcherConfigProvider, classifierProvideFn, db, modelCache)
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDispatcher(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideClassifierFor(provider ClassifierConfigProvider) (classifier.ProvideFn, error) {
	switch provider.ClassifierType() {
	case classifier.AlgTypeNaiveBayes:
		return bayes.NewProvideFn(provider.BayesConfig().Options()...), nil
	default:
		return nil, fmt.Errorf("unknown classifier type: %s", provider.ClassifierType())
	}
}

// ProvideDispatcherFor builds the manager factory. A nil modelCache leaves the remote cache out.
func ProvideDispatcherFor(
	provider DispatcherConfigProvider,
	provideClassifierFn classifier.ProvideFn,
	db *database.DB,
	modelCache *cache.Cache,
) dispatcher.ProvideFn {
	cfg := provider.DispatcherConfig()
	return func(shutdownCh chan<- error) (dispatcher.Manager, error) {
		opts := cfg.Options()
		if modelCache != nil {
			opts = append(opts, dispatcher.WithRemoteCache(modelCache))
		}
		return dispatcher.New(modelDb.New(db), provideClassifierFn, shutdownCh, opts...)
	}
}
