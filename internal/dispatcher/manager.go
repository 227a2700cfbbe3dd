package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/go-sod/nbayes/internal/classifier"
	"github.com/go-sod/nbayes/internal/classifier/bayes"
	"github.com/go-sod/nbayes/internal/dataset"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/internal/metrics"
	"github.com/go-sod/nbayes/internal/model"
	modelCache "github.com/go-sod/nbayes/internal/model/cache"
	modelDb "github.com/go-sod/nbayes/internal/model/database"
)

var (
	ErrNotFound     = modelDb.ErrNotFound
	ErrShuttingDown = errors.New("dispatcher: shutting down")
)

// Contract for returning the Manager instance
type ProvideFn func(chan<- error) (Manager, error)

// Manager owns the named models of the service.
type Manager interface {
	Trainer
	Loader
	Catalog
	// Start background flushing and retention, then preload stored models
	Run(context.Context) error
	Stop()
}

type Trainer interface {
	// Train fits a model on ds and stores it under name, replacing an older model with that name
	Train(ctx context.Context, name string, ds *dataset.DataSet) (model.Record, error)
}

type Loader interface {
	// Load returns the named model from memory, the shared cache or the store, in that order
	Load(ctx context.Context, name string) (model.Record, error)
}

type Catalog interface {
	Models(ctx context.Context) ([]model.Summary, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// Store is the persistent model storage.
type Store interface {
	Store(ctx context.Context, r model.Record) error
	Find(ctx context.Context, name string) (model.Record, error)
	FindAll(ctx context.Context, filter modelDb.FilterFn) ([]model.Record, error)
	Delete(ctx context.Context, name string) (bool, error)
	Keys() ([]string, error)
	Touch(ctx context.Context, usage map[string]time.Time) error
	LastUsed(ctx context.Context) (map[string]time.Time, error)
}

// RemoteCache shares encoded models between replicas. Get returns cache.ErrMiss for unknown names.
type RemoteCache interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

type Options struct {
	cacheSize      int
	maxModels      int
	maxIdle        time.Duration
	rebuildDBTime  time.Duration
	usageFlushTime time.Duration
	usageFlushSize int
	remoteCache    RemoteCache
	preloadOnRun   bool
	nowFn          func() time.Time
}

type Option func(*manager)

func WithCacheSize(n int) Option {
	return func(m *manager) {
		m.opts.cacheSize = n
	}
}

func WithMaxModels(n int) Option {
	return func(m *manager) {
		m.opts.maxModels = n
	}
}

func WithMaxIdle(t time.Duration) Option {
	return func(m *manager) {
		m.opts.maxIdle = t
	}
}

func WithRebuildDBTime(t time.Duration) Option {
	return func(m *manager) {
		m.opts.rebuildDBTime = t
	}
}

func WithUsageFlushTime(t time.Duration) Option {
	return func(m *manager) {
		m.opts.usageFlushTime = t
	}
}

func WithUsageFlushSize(n int) Option {
	return func(m *manager) {
		m.opts.usageFlushSize = n
	}
}

func WithRemoteCache(c RemoteCache) Option {
	return func(m *manager) {
		m.opts.remoteCache = c
	}
}

func WithPreload(b bool) Option {
	return func(m *manager) {
		m.opts.preloadOnRun = b
	}
}

var defaultOptions = Options{
	cacheSize:      64,
	rebuildDBTime:  time.Minute,
	usageFlushTime: 10 * time.Second,
	usageFlushSize: 128,
	preloadOnRun:   true,
	nowFn:          time.Now,
}

// New return manager
func New(store Store, provideTrainerFn classifier.ProvideFn, shutdownCh chan<- error, opts ...Option) (*manager, error) {
	if store == nil {
		return nil, fmt.Errorf("model store is not created")
	}
	if provideTrainerFn == nil {
		return nil, fmt.Errorf("trainer provider is not set")
	}

	m := &manager{
		store:            store,
		shutdownCh:       shutdownCh,
		trainerProvideFn: provideTrainerFn,
		opts:             defaultOptions,
		gen:              make(map[string]uint64),
	}
	for _, f := range opts {
		f(m)
	}

	loaded, err := lru.New(m.opts.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating model lru: %w", err)
	}
	m.loaded = loaded

	m.usage = newUsageTracker(usageTrackerOptions{
		flushTime: m.opts.usageFlushTime,
		flushSize: m.opts.usageFlushSize,
		nowFn:     m.opts.nowFn,
	}, shutdownCh)

	m.dbScheduler = newDBScheduler(dbSchedulerConfig{
		maxModels:     m.opts.maxModels,
		maxIdle:       m.opts.maxIdle,
		rebuildDBTime: m.opts.rebuildDBTime,
		nowFn:         m.opts.nowFn,
	})

	return m, nil
}

type manager struct {
	mtx sync.RWMutex

	opts  Options
	store Store
	// Recently used models, keyed by name
	loaded *lru.Cache
	// De-duplicates concurrent loads of the same name
	group singleflight.Group
	// genMtx orders LRU and shared cache writes of Load against Train and Delete. Train and Delete
	// bump gen[name]; a load that observes a newer generation must not install its record.
	genMtx sync.Mutex
	gen    map[string]uint64

	usage       *usageTracker
	dbScheduler *dbScheduler
	// The factory returns a new trainer for every training request
	trainerProvideFn classifier.ProvideFn

	shutdownCh chan<- error
	closed     bool
	cancel     func()
}

// Run starts usage flushing and retention and preloads stored models into memory.
func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go m.usage.flusher(ctx, m.store.Touch)
	go m.dbScheduler.schedule(ctx, m.store.Keys, m.lastUsed, m.store.Touch, m.Delete)
	go func() {
		<-ctx.Done()
		m.mtx.Lock()
		m.closed = true
		m.mtx.Unlock()
	}()

	if !m.opts.preloadOnRun {
		return nil
	}
	if err := m.bulkLoad(ctx); err != nil {
		return fmt.Errorf("can not start dispatcher manager: %w", err)
	}
	return nil
}

// lastUsed merges stored timestamps with the ones still buffered by the usage tracker
func (m *manager) lastUsed(ctx context.Context) (map[string]time.Time, error) {
	stored, err := m.store.LastUsed(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = map[string]time.Time{}
	}
	for k, v := range m.usage.pending() {
		if v.After(stored[k]) {
			stored[k] = v
		}
	}
	return stored, nil
}

func (m *manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *manager) isClosed() bool {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.closed
}

// bulkLoad fills the LRU with the most recently created stored models
func (m *manager) bulkLoad(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	records, err := m.store.FindAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("error fetching stored models: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > m.opts.cacheSize {
		records = records[:m.opts.cacheSize]
	}
	// oldest first so the newest end up most recently used
	for i := len(records) - 1; i >= 0; i-- {
		m.loaded.Add(records[i].Name, records[i])
	}

	logger.Infof("preloaded %d models", len(records))
	metrics.RecordResident(ctx, m.loaded.Len())
	return nil
}

func (m *manager) Train(ctx context.Context, name string, ds *dataset.DataSet) (model.Record, error) {
	logger := logging.FromContext(ctx)
	if m.isClosed() {
		return model.Record{}, ErrShuttingDown
	}

	trainer, err := m.trainerProvideFn()
	if err != nil {
		return model.Record{}, fmt.Errorf("can not create trainer instance: %w", err)
	}

	start := m.opts.nowFn()
	c, err := trainer.Train(ctx, ds)
	metrics.RecordTrain(ctx, m.opts.nowFn().Sub(start), ds.Len(), err)
	if err != nil {
		return model.Record{}, fmt.Errorf("train %s: %w", name, err)
	}

	trained, ok := c.(*bayes.Model)
	if !ok {
		return model.Record{}, fmt.Errorf("train %s: classifier %T can not be stored", name, c)
	}

	r, err := model.NewRecord(name, ds, trained, m.opts.nowFn().UTC())
	if err != nil {
		return model.Record{}, err
	}
	if err := m.store.Store(ctx, r); err != nil {
		return model.Record{}, fmt.Errorf("store %s: %w", name, err)
	}

	m.genMtx.Lock()
	m.gen[name]++
	m.group.Forget(name)
	m.loaded.Add(name, r)
	m.publish(ctx, r)
	m.genMtx.Unlock()
	m.usage.touch(ctx, name)
	metrics.RecordResident(ctx, m.loaded.Len())

	logger.Infof("trained model %s (%s) on %d samples", name, r.ID, r.Samples)
	return r, nil
}

// publish writes r to the shared cache. Failures only cost a later store read.
func (m *manager) publish(ctx context.Context, r model.Record) {
	if m.opts.remoteCache == nil {
		return
	}
	logger := logging.FromContext(ctx)
	data, err := model.Encode(r)
	if err != nil {
		logger.Errorf("unable to encode model %s for cache: %v", r.Name, err)
		return
	}
	if err := m.opts.remoteCache.Set(ctx, r.Name, data); err != nil {
		logger.Warnf("unable to publish model %s: %v", r.Name, err)
	}
}

func (m *manager) Load(ctx context.Context, name string) (model.Record, error) {
	if m.isClosed() {
		return model.Record{}, ErrShuttingDown
	}

	if v, ok := m.loaded.Get(name); ok {
		metrics.RecordLoad(ctx, metrics.SourceMemory)
		m.usage.touch(ctx, name)
		return v.(model.Record), nil
	}

	gen := m.generation(name)
	v, err, _ := m.group.Do(name, func() (interface{}, error) {
		r, source, err := m.fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		metrics.RecordLoad(ctx, source)

		m.genMtx.Lock()
		defer m.genMtx.Unlock()
		if m.gen[name] != gen {
			// Trained or deleted while fetching
			if cur, ok := m.loaded.Get(name); ok {
				return cur, nil
			}
			return r, nil
		}
		m.loaded.Add(name, r)
		if source == metrics.SourceStore {
			m.publish(ctx, r)
		}
		metrics.RecordResident(ctx, m.loaded.Len())
		return r, nil
	})
	if err != nil {
		return model.Record{}, err
	}
	m.usage.touch(ctx, name)
	return v.(model.Record), nil
}

// fetch reads a model from the shared cache, falling back to the store.
func (m *manager) fetch(ctx context.Context, name string) (model.Record, string, error) {
	logger := logging.FromContext(ctx)
	if c := m.opts.remoteCache; c != nil {
		data, err := c.Get(ctx, name)
		switch {
		case err == nil:
			r, err := model.Decode(data)
			if err == nil {
				return r, metrics.SourceCache, nil
			}
			logger.Warnf("dropping undecodable cached model %s: %v", name, err)
			_ = c.Delete(ctx, name)
		case !errors.Is(err, modelCache.ErrMiss):
			logger.Warnf("model cache unavailable: %v", err)
		}
	}

	r, err := m.store.Find(ctx, name)
	if err != nil {
		return model.Record{}, "", fmt.Errorf("load %s: %w", name, err)
	}
	return r, metrics.SourceStore, nil
}

func (m *manager) generation(name string) uint64 {
	m.genMtx.Lock()
	defer m.genMtx.Unlock()
	return m.gen[name]
}

// Models lists stored models ordered by name.
func (m *manager) Models(ctx context.Context) ([]model.Summary, error) {
	records, err := m.store.FindAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	out := make([]model.Summary, len(records))
	for i := range records {
		out[i] = records[i].Summary()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *manager) Delete(ctx context.Context, name string) (bool, error) {
	found, err := m.store.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	m.genMtx.Lock()
	m.gen[name]++
	m.group.Forget(name)
	m.loaded.Remove(name)
	if c := m.opts.remoteCache; c != nil {
		if err := c.Delete(ctx, name); err != nil {
			logging.FromContext(ctx).Warnf("unable to drop cached model %s: %v", name, err)
		}
	}
	m.genMtx.Unlock()
	m.usage.forget(name)
	metrics.RecordResident(ctx, m.loaded.Len())
	return found, nil
}
