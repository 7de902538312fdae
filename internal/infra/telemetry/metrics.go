package telemetry

import (
	"time"

	"toolbelt/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveExecute(_ string, _ domain.Locality, _ domain.ExecuteStatus, _ time.Duration) {
}

func (n *NoopMetrics) ObserveResolve(_ domain.EntityKind, _ domain.ResolveSource) {}

func (n *NoopMetrics) ObserveRemoteFetch(_ domain.EntityKind, _ time.Duration, _ error) {}

func (n *NoopMetrics) ObserveCacheHit(_ domain.EntityKind, _ string) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
