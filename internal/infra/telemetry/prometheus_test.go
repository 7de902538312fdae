package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolbelt/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.executeDuration)
	assert.NotNil(t, m.resolutions)
	assert.NotNil(t, m.remoteFetchDuration)
	assert.NotNil(t, m.cacheHits)
}

func TestNewPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveExecute("github", domain.LocalityRemote, domain.ExecuteStatusSuccess, 10*time.Millisecond)
	m.ObserveResolve(domain.KindAction, domain.ResolveSourceStatic)
	m.ObserveRemoteFetch(domain.KindAction, 50*time.Millisecond, nil)
	m.ObserveRemoteFetch(domain.KindApp, 50*time.Millisecond, errors.New("boom"))
	m.ObserveCacheHit(domain.KindAction, "memory")

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, mf := range metrics {
		names = append(names, mf.GetName())
	}

	assert.Contains(t, names, "toolbelt_execute_duration_seconds")
	assert.Contains(t, names, "toolbelt_resolutions_total")
	assert.Contains(t, names, "toolbelt_remote_fetch_duration_seconds")
	assert.Contains(t, names, "toolbelt_cache_hits_total")
}
