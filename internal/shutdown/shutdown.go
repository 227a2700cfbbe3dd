// Package shutdown ties the lifetime of the process to SIGINT and SIGTERM.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sod/nbayes/internal/logging"
)

// New returns a context carrying the environment logger that is cancelled on the first interrupt or
// terminate signal.
func New() (context.Context, context.CancelFunc) {
	ctx := logging.WithLogger(context.Background(), logging.NewLoggerFromEnv())
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
