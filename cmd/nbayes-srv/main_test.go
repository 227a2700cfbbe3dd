package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAwaitShutdown(t *testing.T) {
	t.Parallel()
	errListen := errors.New("listen tcp :8787: bind: address already in use")
	errFlush := errors.New("flush usage: database closed")
	tests := []struct {
		name     string
		serveErr error
		flushErr error
		expected []error
	}{
		{name: "signal"},
		{name: "signal_flush_failed", flushErr: errFlush, expected: []error{errFlush}},
		{name: "server_failed", serveErr: errListen, expected: []error{errListen}},
		{name: "server_and_flush_failed", serveErr: errListen, flushErr: errFlush, expected: []error{errListen, errFlush}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			serveErrCh := make(chan error, 2)
			shutdownCh := make(chan error, 1)
			// the manager reports once its context ends
			go func() {
				<-ctx.Done()
				shutdownCh <- test.flushErr
			}()
			if test.serveErr != nil {
				serveErrCh <- test.serveErr
			} else {
				time.AfterFunc(10*time.Millisecond, cancel)
			}

			err := awaitShutdown(cancel, serveErrCh, shutdownCh)
			assert.Error(t, ctx.Err())
			if len(test.expected) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, expected := range test.expected {
				assert.True(t, errors.Is(err, expected), "got: %v, expected: %v", err, expected)
			}
		})
	}
}
