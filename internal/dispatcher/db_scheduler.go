package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-sod/nbayes/internal/logging"
)

// Scheduler options
type dbSchedulerConfig struct {
	maxModels     int
	maxIdle       time.Duration
	rebuildDBTime time.Duration
	nowFn         func() time.Time
}

func newDBScheduler(config dbSchedulerConfig) *dbScheduler {
	if config.rebuildDBTime <= 0 {
		config.rebuildDBTime = defaultOptions.rebuildDBTime
	}
	return &dbScheduler{opts: config}
}

// The scheduler is responsible for deleting models from the DB.
// It can keep at most maxModels models and delete models unused for longer than maxIdle.
type dbScheduler struct {
	opts dbSchedulerConfig
}

type (
	// function for getting all model names
	fetchKeysFn func() ([]string, error)
	// function for getting the last use of every model
	fetchUsageFn func(context.Context) (map[string]time.Time, error)
	// function for deleting a model everywhere it is held
	deleteModelFn func(context.Context, string) (bool, error)
)

type usedModel struct {
	name     string
	lastUsed time.Time
}

// usage returns every stored model with its last use, oldest first. Models without a recorded
// use are stamped now so that retention counts from the first time the scheduler saw them.
func (s *dbScheduler) usage(ctx context.Context, keysFn fetchKeysFn, usageFn fetchUsageFn, touch touchFn) ([]usedModel, error) {
	keys, err := keysFn()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch model keys: %w", err)
	}
	lastUsed, err := usageFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch model usage: %w", err)
	}

	now := s.opts.nowFn()
	unseen := map[string]time.Time{}
	models := make([]usedModel, 0, len(keys))
	for _, k := range keys {
		at, ok := lastUsed[k]
		if !ok {
			at = now
			unseen[k] = now
		}
		models = append(models, usedModel{name: k, lastUsed: at})
	}
	if len(unseen) > 0 {
		if err := touch(ctx, unseen); err != nil {
			return nil, fmt.Errorf("unable to stamp models: %w", err)
		}
	}

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].lastUsed.Before(models[j].lastUsed)
	})
	return models, nil
}

// idle returns the models unused for longer than maxIdle
func (s *dbScheduler) idle(models []usedModel) []string {
	var out []string
	now := s.opts.nowFn()
	for _, m := range models {
		if now.Sub(m.lastUsed) > s.opts.maxIdle {
			out = append(out, m.name)
		}
	}
	return out
}

// overflow returns the least recently used models beyond maxModels
func (s *dbScheduler) overflow(models []usedModel) []string {
	if len(models) <= s.opts.maxModels {
		return nil
	}
	out := make([]string, 0, len(models)-s.opts.maxModels)
	for _, m := range models[:len(models)-s.opts.maxModels] {
		out = append(out, m.name)
	}
	return out
}

// rebuild deletes idle and overflowing models and returns the deleted names
func (s *dbScheduler) rebuild(
	ctx context.Context,
	keysFn fetchKeysFn,
	usageFn fetchUsageFn,
	touch touchFn,
	deleteFn deleteModelFn,
) ([]string, error) {
	models, err := s.usage(ctx, keysFn, usageFn, touch)
	if err != nil {
		return nil, err
	}

	victims := map[string]bool{}
	if s.opts.maxIdle > 0 {
		for _, name := range s.idle(models) {
			victims[name] = true
		}
	}
	if s.opts.maxModels > 0 {
		for _, name := range s.overflow(models) {
			victims[name] = true
		}
	}

	var deleted []string
	for _, m := range models {
		if !victims[m.name] {
			continue
		}
		if _, err := deleteFn(ctx, m.name); err != nil {
			return deleted, fmt.Errorf("unable delete model %s: %w", m.name, err)
		}
		deleted = append(deleted, m.name)
	}
	return deleted, nil
}

// Scheduler for running model retention in the DB
func (s *dbScheduler) schedule(
	ctx context.Context,
	keysFn fetchKeysFn,
	usageFn fetchUsageFn,
	touch touchFn,
	deleteFn deleteModelFn,
) {
	if s.opts.maxModels <= 0 && s.opts.maxIdle <= 0 {
		return
	}
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(s.opts.rebuildDBTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			deleted, err := s.rebuild(ctx, keysFn, usageFn, touch, deleteFn)
			if err != nil {
				logger.Errorf("unable db rebuild: %v", err)
			}
			if len(deleted) > 0 {
				logger.Infof("retention deleted models %v", deleted)
			}
		case <-ctx.Done():
			return
		}
	}
}
