package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"go.uber.org/multierr"

	"github.com/go-sod/nbayes/internal/buildinfo"
	"github.com/go-sod/nbayes/internal/catalog"
	"github.com/go-sod/nbayes/internal/classify"
	nbayes "github.com/go-sod/nbayes/internal/config"
	"github.com/go-sod/nbayes/internal/logging"
	"github.com/go-sod/nbayes/internal/metrics"
	"github.com/go-sod/nbayes/internal/server"
	"github.com/go-sod/nbayes/internal/setup"
	"github.com/go-sod/nbayes/internal/shutdown"
	"github.com/go-sod/nbayes/internal/train"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		done()
		logger.Fatal(err)
	}

	done()
}

func run(ctx context.Context, cancel func()) error {
	logger := logging.FromContext(ctx)
	config := nbayes.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}
	defer func() {
		if err := env.Close(context.Background()); err != nil {
			logger.Errorf("env.Close: %v", err)
		}
	}()

	// the usage tracker reports once when the manager stops
	shutdownCh := make(chan error, 1)
	manager, err := env.ProvideDispatcher()(shutdownCh)
	if err != nil {
		return fmt.Errorf("dispatcher provider function error: %w", err)
	}
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher.Run: %w", err)
	}

	exporter, err := metrics.NewExporter(&config.Metrics)
	if err != nil {
		return fmt.Errorf("metrics.NewExporter: %w", err)
	}

	trainHandler, err := train.NewHandler(&config.Train, manager)
	if err != nil {
		return fmt.Errorf("train.NewHandler: %w", err)
	}
	classifyHandler, err := classify.NewHandler(&config.Classify, manager)
	if err != nil {
		return fmt.Errorf("classify.NewHandler: %w", err)
	}
	catalogHandler, err := catalog.NewHandler(&config.Catalog, manager)
	if err != nil {
		return fmt.Errorf("catalog.NewHandler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/train", trainHandler)
	mux.Handle("/classify", classifyHandler)
	mux.Handle("/models", catalogHandler)
	mux.Handle(config.Metrics.Path, exporter)
	mux.Handle("/health", server.HandleHealth(ctx, env.Database().Ping))

	srv, err := server.New(config.SrvAddr, config.MaxConns)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcSrv, err := server.New(config.GRPCAddr, 0)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	serveErrCh := make(chan error, 2)
	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			serveErrCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := grpcSrv.ServeGRPC(ctx, server.NewHealthServer(ctx)); err != nil {
			serveErrCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	if config.DebugAddr != "" {
		go func() {
			if err := http.ListenAndServe(config.DebugAddr, nil); err != nil {
				logger.Errorf("debug server: %v", err)
			}
		}()
	}

	logger.Infof("Serving http on %s, grpc health on %s", srv.Addr(), grpcSrv.Addr())
	return awaitShutdown(cancel, serveErrCh, shutdownCh)
}

// awaitShutdown blocks until the manager reports its final usage flush. A failed server cancels
// the context first and its error is returned along with the flush result.
func awaitShutdown(cancel func(), serveErrCh, shutdownCh <-chan error) error {
	select {
	case err := <-shutdownCh:
		return err
	case serveErr := <-serveErrCh:
		cancel()
		return multierr.Append(serveErr, <-shutdownCh)
	}
}
