// Package cache shares encoded models between service replicas through redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/go-sod/nbayes/internal/logging"
)

var (
	ErrMiss     = errors.New("cache: miss")
	ErrDisabled = errors.New("cache: no redis address configured")
)

type Config struct {
	Addr     string        `envconfig:"NBAYES_REDIS_ADDR"`
	Password string        `envconfig:"NBAYES_REDIS_PASSWORD"`
	DB       int           `envconfig:"NBAYES_REDIS_DB" default:"0"`
	Prefix   string        `envconfig:"NBAYES_REDIS_PREFIX" default:"nbayes:model:"`
	TTL      time.Duration `envconfig:"NBAYES_REDIS_TTL" default:"24h"`
	Timeout  time.Duration `envconfig:"NBAYES_REDIS_TIMEOUT" default:"2s"`
}

func (c Config) Enabled() bool {
	return c.Addr != ""
}

// New connects to redis and checks the connection.
func New(ctx context.Context, cfg *Config) (*Cache, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	logging.FromContext(ctx).Infof("model cache connected to redis %s", cfg.Addr)
	return &Cache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (c *Cache) key(name string) string {
	return c.prefix + name
}

func (c *Cache) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", name, err)
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, name string, data []byte) error {
	if err := c.client.Set(ctx, c.key(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, c.key(name)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", name, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
