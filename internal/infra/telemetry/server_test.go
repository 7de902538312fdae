package telemetry

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"toolbelt/internal/domain"
)

func TestStartMetricsServer_Success(t *testing.T) {
	// Use random port to avoid conflicts
	listener := mustListen(t)
	addr := listener.Addr().String()
	listener.Close()

	registry := prometheus.NewRegistry()
	NewPrometheusMetrics(registry).ObserveCacheHit(domain.KindApp, "memory")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- StartMetricsServer(ctx, HTTPServerOptions{Addr: addr, Registry: registry}, zap.NewNop())
	}()

	// Wait for server to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "toolbelt_cache_hits_total")

	// Trigger graceful shutdown
	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestStartMetricsServer_AddrInUse(t *testing.T) {
	listener := mustListen(t)
	defer listener.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := StartMetricsServer(ctx, HTTPServerOptions{Addr: listener.Addr().String()}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func mustListen(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return listener
}
