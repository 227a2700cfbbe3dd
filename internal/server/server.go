package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/go-sod/nbayes/internal/logging"
)

// ServiceName is reported by the gRPC health service.
const ServiceName = "nbayes"

type Server struct {
	addr     string
	listener net.Listener
}

// New listens on addr. With maxConns > 0 at most maxConns connections are served at once.
func New(addr string, maxConns int) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on %s: %w", addr, err)
	}
	if maxConns > 0 {
		listener = netutil.LimitListener(listener, maxConns)
	}

	return &Server{
		addr:     addr,
		listener: listener,
	}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx)
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()

		logger.Debugf("server.Serve: context closed")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()

		logger.Debugf("server.Serve: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	logger.Debugf("server.Serve: serving stopped")

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to shutdown: %w", err)
	default:
		return nil
	}
}

func (s *Server) ServeHTTPHandler(ctx context.Context, handler http.Handler) error {
	return s.ServeHTTP(ctx, &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	})
}

// ServeGRPC serves srv on the server listener until ctx is done.
func (s *Server) ServeGRPC(ctx context.Context, srv *grpc.Server) error {
	logger := logging.FromContext(ctx)
	logger.Debugf("server: grpc listening on %s", s.addr)
	go func() {
		<-ctx.Done()
		logger.Debugf("server: grpc context closed")
		srv.GracefulStop()
	}()

	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("server: grpc serve: %w", err)
	}

	logger.Debugf("server: grpc serving stopped")
	return nil
}

// NewHealthServer returns a gRPC server exposing the standard health service. The service reports
// SERVING until ctx is done.
func NewHealthServer(ctx context.Context) *grpc.Server {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	go func() {
		<-ctx.Done()
		hs.Shutdown()
	}()

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// HandleHealth answers ok while ctx is alive and every check passes.
func HandleHealth(ctx context.Context, checks ...func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, `{"status": "shutting down"}`)
			return
		}
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				logging.FromContext(ctx).Warnf("health check failed: %v", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprintf(w, `{"status": "unhealthy"}`)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{"status": "ok"}`)
	})
}
