package server

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	tests := []struct {
		name   string
		checks []func(context.Context) error
		status int
	}{
		{name: "ok", status: http.StatusOK},
		{
			name:   "failing_check",
			checks: []func(context.Context) error{func(context.Context) error { return errors.New("db closed") }},
			status: http.StatusServiceUnavailable,
		},
	}
	for _, test := range tests {
		rec := httptest.NewRecorder()
		HandleHealth(ctx, test.checks...).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, test.status, rec.Code, test.name)
	}

	cancel()
	rec := httptest.NewRecorder()
	HandleHealth(ctx).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_ServeHTTPHandler(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := New("127.0.0.1:0", 4)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeHTTPHandler(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "pong")
		}))
	}()

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	body, err := ioutil.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ServeGRPCHealth(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	srv, err := New("127.0.0.1:0", 0)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeGRPC(ctx, NewHealthServer(ctx))
	}()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	conn, err := grpc.DialContext(dialCtx, srv.Addr(), grpc.WithInsecure(), grpc.WithBlock())
	require.NoError(t, err)

	resp, err := healthpb.NewHealthClient(conn).Check(dialCtx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	require.NoError(t, conn.Close())

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("grpc server did not stop")
	}
}
