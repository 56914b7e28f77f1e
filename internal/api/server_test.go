package api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SamFelix03/cummadashboard/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) Ping(context.Context) error {
	if p.fail.Load() {
		return errors.New("store down")
	}
	return nil
}

func startGRPC(t *testing.T, pinger Pinger) (*GRPCServer, healthpb.HealthClient) {
	t.Helper()
	logger := zerolog.Nop()
	srv, err := NewGRPCServer(config.APIConfig{GRPC: config.APIGRPCConfig{Port: 0}}, pinger, &logger)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, healthpb.NewHealthClient(conn)
}

func healthStatus(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestGRPCHealthFollowsStore(t *testing.T) {
	pinger := &fakePinger{}
	srv, client := startGRPC(t, pinger)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, client, ""))

	srv.checkOnce(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, healthStatus(t, client, HealthServiceName))

	pinger.fail.Store(true)
	srv.checkOnce(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, healthStatus(t, client, HealthServiceName))
}

func TestGRPCWatchHealthStopsOnCancel(t *testing.T) {
	srv, client := startGRPC(t, &fakePinger{})
	srv.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.WatchHealth(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return healthStatus(t, client, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchHealth did not return after cancel")
	}
}

func TestBuildTLSConfigRequiresFiles(t *testing.T) {
	_, err := buildTLSConfig(config.APITLSConfig{Enabled: true})
	assert.Error(t, err)

	_, err = buildTLSConfig(config.APITLSConfig{Enabled: true, CertFile: "missing.pem", KeyFile: "missing.key"})
	assert.Error(t, err)
}

func TestChainUnaryInterceptorsOrder(t *testing.T) {
	var order []string
	mk := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
			order = append(order, name)
			return h(ctx, req)
		}
	}
	chained := ChainUnaryInterceptors(mk("a"), mk("b"))
	_, err := chained(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x"}, func(context.Context, any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRateLimitUnaryInterceptor(t *testing.T) {
	interceptor := rateLimitUnaryInterceptor(newRateLimiter(config.APIRateLimitConfig{RPS: 1, Burst: 1}))
	handler := func(context.Context, any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/x"}

	_, err := interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
	_, err = interceptor(context.Background(), nil, info, handler)
	assert.Error(t, err)
}
