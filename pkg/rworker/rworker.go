package rworker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

var (
	ErrWaitInterrupted = errors.New("rworker: wait interrupted")
	ErrWaitTimeout     = errors.New("rworker: wait timed out")
)

// Executor runs independent tasks and blocks on Wait until every submitted task has finished.
type Executor interface {
	// Go submits a task. Tasks must not depend on each other.
	Go(fn func() error)
	// Wait returns the combined error of all tasks, or an interruption error if ctx ends first.
	Wait(ctx context.Context) error
}

// NewPool returns an executor running at most n tasks at a time. Every task gets its own goroutine
// that waits for a free slot in the rate channel. Once Wait gives up, queued tasks are dropped.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{rate: make(chan struct{}, n), abort: make(chan struct{})}
}

type Pool struct {
	mtx  sync.Mutex
	wg   sync.WaitGroup
	rate chan struct{}
	err  error

	abort     chan struct{}
	abortOnce sync.Once
}

func (p *Pool) Go(fn func() error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		select {
		case p.rate <- struct{}{}:
		case <-p.abort:
			return
		}
		defer func() { <-p.rate }()
		select {
		case <-p.abort:
			return
		default:
		}
		if err := protect(fn); err != nil {
			p.mtx.Lock()
			p.err = multierr.Append(p.err, err)
			p.mtx.Unlock()
		}
	}()
}

func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.mtx.Lock()
		defer p.mtx.Unlock()
		return p.err
	case <-ctx.Done():
		p.abortOnce.Do(func() { close(p.abort) })
		return interrupted(ctx.Err())
	}
}

// NewSync returns an executor that runs every task on the calling goroutine.
func NewSync() *Sync {
	return &Sync{}
}

type Sync struct {
	err error
}

func (s *Sync) Go(fn func() error) {
	s.err = multierr.Append(s.err, protect(fn))
}

func (s *Sync) Wait(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return interrupted(err)
	}
	return nil
}

func interrupted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrWaitTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrWaitInterrupted, err)
}

// protect turns a panicking task into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("task panic: %w", e)
				return
			}
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return fn()
}
