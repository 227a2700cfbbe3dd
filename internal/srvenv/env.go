package srvenv

import (
	"context"

	"go.uber.org/multierr"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/database"
	"github.com/go-sod/nbayes/internal/dispatcher"
	"github.com/go-sod/nbayes/internal/model/cache"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

// SrvEnv holds the resources shared by the server components.
type SrvEnv struct {
	database   *database.DB
	cache      *cache.Cache
	classifier classifier.ProvideFn
	dispatcher dispatcher.ProvideFn
}

func (s *SrvEnv) ProvideDispatcher() dispatcher.ProvideFn {
	return s.dispatcher
}

func (s *SrvEnv) ProvideClassifier() classifier.ProvideFn {
	return s.classifier
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

// Cache returns the shared model cache, nil when it is not configured.
func (s *SrvEnv) Cache() *cache.Cache {
	return s.cache
}

func WithDispatcher(fn dispatcher.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.dispatcher = fn
		return s
	}
}

func WithClassifier(fn classifier.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.classifier = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithCache(c *cache.Cache) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.cache = c
		return s
	}
}

// Close releases the database and the cache connection.
func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var err error
	if s.database != nil {
		err = multierr.Append(err, s.database.Close(ctx))
	}
	if s.cache != nil {
		err = multierr.Append(err, s.cache.Close())
	}
	return err
}
