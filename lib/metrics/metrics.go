package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects cache and assembly counters. A nil *Metrics is valid and
// records nothing, so instrumented code never has to branch on it.
type Metrics struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec
	batchSize    *prometheus.HistogramVec
	assembleTime prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcore_cache_hits_total",
			Help: "Cache hits by entity kind.",
		}, []string{"entity"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcore_cache_misses_total",
			Help: "Cache misses by entity kind.",
		}, []string{"entity"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedcore_cache_errors_total",
			Help: "Cache transport or codec failures by entity kind.",
		}, []string{"entity"}),
		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedcore_batch_load_size",
			Help:    "Number of IDs fetched from the primary store per batch.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}, []string{"entity"}),
		assembleTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedcore_assemble_duration_seconds",
			Help:    "Wall time spent assembling one page.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.cacheErrors, m.batchSize, m.assembleTime)
	return m
}

func (m *Metrics) CacheHit(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cacheHits.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) CacheMiss(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cacheMisses.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) CacheError(entity string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(entity).Inc()
}

func (m *Metrics) BatchLoaded(entity string, n int) {
	if m == nil {
		return
	}
	m.batchSize.WithLabelValues(entity).Observe(float64(n))
}

func (m *Metrics) AssembleDone(d time.Duration) {
	if m == nil {
		return
	}
	m.assembleTime.Observe(d.Seconds())
}
