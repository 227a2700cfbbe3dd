package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-sod/nbayes/internal/logging"
)

// abstraction for persisting last-use timestamps
type touchFn func(context.Context, map[string]time.Time) error

func newUsageTracker(opts usageTrackerOptions, shutdownCh chan<- error) *usageTracker {
	if opts.flushTime <= 0 {
		opts.flushTime = defaultOptions.usageFlushTime
	}
	return &usageTracker{opts: opts, shutdownCh: shutdownCh, buf: map[string]time.Time{}}
}

type usageTrackerOptions struct {
	flushSize int
	flushTime time.Duration
	nowFn     func() time.Time
}

// usageTracker accumulates model use timestamps and writes them to the store in bulk.
// Retention reads them to find idle models.
type usageTracker struct {
	mtx sync.Mutex

	opts usageTrackerOptions
	// latest use per model name since the last flush
	buf        map[string]time.Time
	flush      touchFn
	shutdownCh chan<- error
}

// touch records a use of name. A full buffer is flushed in the background.
func (u *usageTracker) touch(ctx context.Context, name string) {
	u.mtx.Lock()
	u.buf[name] = u.opts.nowFn()
	bufLen := len(u.buf)
	flush := u.flush
	u.mtx.Unlock()

	if flush != nil && u.opts.flushSize > 0 && bufLen >= u.opts.flushSize {
		go u.bulkTouch(ctx, flush)
	}
}

// forget drops a pending timestamp of a deleted model
func (u *usageTracker) forget(name string) {
	u.mtx.Lock()
	delete(u.buf, name)
	u.mtx.Unlock()
}

// pending returns a copy of the timestamps not flushed yet
func (u *usageTracker) pending() map[string]time.Time {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	out := make(map[string]time.Time, len(u.buf))
	for k, v := range u.buf {
		out[k] = v
	}
	return out
}

// take swaps the buffer for an empty one
func (u *usageTracker) take() map[string]time.Time {
	u.mtx.Lock()
	defer u.mtx.Unlock()
	pending := u.buf
	u.buf = make(map[string]time.Time, len(pending))
	return pending
}

func (u *usageTracker) bulkTouch(ctx context.Context, flush touchFn) {
	logger := logging.FromContext(ctx)
	pending := u.take()
	if len(pending) == 0 {
		return
	}
	if err := flush(context.Background(), pending); err != nil {
		logger.Errorf("usageTracker: touch operation failed: %v", err)
	}
}

// shutdown writes every pending timestamp or returns an error
func (u *usageTracker) shutdown(flush touchFn) error {
	pending := u.take()
	if len(pending) == 0 {
		return nil
	}
	if err := flush(context.Background(), pending); err != nil {
		return fmt.Errorf("usageTracker: touch operation failed: %w", err)
	}
	return nil
}

// flusher writes pending timestamps every flushTime until ctx ends, then reports the final flush
// on the shutdown channel.
func (u *usageTracker) flusher(ctx context.Context, flush touchFn) {
	u.mtx.Lock()
	u.flush = flush
	u.mtx.Unlock()
	defer func() {
		if u.shutdownCh != nil {
			u.shutdownCh <- u.shutdown(flush)
		}
	}()
	ticker := time.NewTicker(u.opts.flushTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			u.bulkTouch(ctx, flush)
		case <-ctx.Done():
			return
		}
	}
}
