package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the CRM.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	persists        *prometheus.CounterVec
	upsertedDeals   prometheus.Counter
}

// NewMetrics creates a dedicated registry so it can be called more than once
// (tests) without duplicate collector panics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yourgency_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yourgency_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yourgency_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yourgency_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yourgency_ai_tokens_total",
				Help: "Total AI tokens consumed.",
			},
			[]string{"type"},
		),
		persists: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yourgency_bulk_upserts_total",
				Help: "Bulk opportunity upserts by result.",
			},
			[]string{"result"},
		),
		upsertedDeals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "yourgency_upserted_deals_total",
				Help: "Deals written by bulk upserts.",
			},
		),
	}
}

func (m *Metrics) RecordRequestDuration(route string, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// RecordUpsert counts one bulk upsert and the number of deals it carried.
func (m *Metrics) RecordUpsert(count int, err error) {
	if err != nil {
		m.persists.WithLabelValues("error").Inc()
		return
	}
	m.persists.WithLabelValues("success").Inc()
	m.upsertedDeals.Add(float64(count))
}

// Handler serves the private registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
