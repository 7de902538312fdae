package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolbelt/internal/domain"
)

type PrometheusMetrics struct {
	executeDuration     *prometheus.HistogramVec
	resolutions         *prometheus.CounterVec
	remoteFetchDuration *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		executeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolbelt_execute_duration_seconds",
				Help:    "Duration of action executions in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"app", "locality", "status"},
		),
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolbelt_resolutions_total",
				Help: "Total number of slug resolutions by namespace",
			},
			[]string{"kind", "source"},
		),
		remoteFetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolbelt_remote_fetch_duration_seconds",
				Help:    "Duration of remote metadata fetches in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind", "status"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolbelt_cache_hits_total",
				Help: "Total number of metadata cache hits by tier",
			},
			[]string{"kind", "tier"},
		),
	}
}

func (p *PrometheusMetrics) ObserveExecute(app string, locality domain.Locality, status domain.ExecuteStatus, duration time.Duration) {
	p.executeDuration.WithLabelValues(app, string(locality), string(status)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveResolve(kind domain.EntityKind, source domain.ResolveSource) {
	p.resolutions.WithLabelValues(string(kind), string(source)).Inc()
}

func (p *PrometheusMetrics) ObserveRemoteFetch(kind domain.EntityKind, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.remoteFetchDuration.WithLabelValues(string(kind), status).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCacheHit(kind domain.EntityKind, tier string) {
	p.cacheHits.WithLabelValues(string(kind), tier).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
