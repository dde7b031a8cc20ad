package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API client.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	apiErrors       *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	cacheClears     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// client metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_api_request_duration_seconds",
				Help:    "Duration of API calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		apiErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_api_errors_total",
				Help: "Total failed API calls by error class.",
			},
			[]string{"class"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		cacheClears: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_invalidations_total",
				Help: "Total cache invalidations.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_api_requests_total",
				Help: "Total API calls attempted, by response status (\"none\" without a response).",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrAPIError increments the error counter for a class
// (transport, decode, 3xx, 4xx, 5xx).
func (m *Metrics) IncrAPIError(class string) {
	m.apiErrors.WithLabelValues(class).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrCacheClear increments the cache invalidation counter.
func (m *Metrics) IncrCacheClear(cache string) {
	m.cacheClears.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// Snapshot is a point-in-time view of the client counters.
type Snapshot struct {
	Requests       int64
	Errors         int64
	CacheHits      int64
	CacheMisses    int64
	CacheClears    int64
	CacheHitRate   float64
	ErrorRate      float64
	ErrorsByClass  map[string]int64
	RequestsByCode map[string]int64
}

var errorClasses = []string{"transport", "decode", "3xx", "4xx", "5xx"}

// Snapshot gathers the current counter values for the given cache name.
func (m *Metrics) Snapshot(cache string) Snapshot {
	s := Snapshot{
		ErrorsByClass:  make(map[string]int64),
		RequestsByCode: make(map[string]int64),
	}

	for _, class := range errorClasses {
		v := int64(getCounterValue(m.apiErrors, class))
		if v > 0 {
			s.ErrorsByClass[class] = v
		}
		s.Errors += v
	}

	families, err := m.Registry.Gather()
	if err == nil {
		for _, mf := range families {
			if mf.GetName() != "fintrack_api_requests_total" {
				continue
			}
			for _, metric := range mf.GetMetric() {
				v := int64(metric.GetCounter().GetValue())
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == "status" {
						s.RequestsByCode[lp.GetValue()] = v
					}
				}
				s.Requests += v
			}
		}
	}

	s.CacheHits = int64(getCounterValue(m.cacheHits, cache))
	s.CacheMisses = int64(getCounterValue(m.cacheMisses, cache))
	s.CacheClears = int64(getCounterValue(m.cacheClears, cache))

	if s.CacheHits+s.CacheMisses > 0 {
		s.CacheHitRate = float64(s.CacheHits) / float64(s.CacheHits+s.CacheMisses)
	}
	if s.Requests > 0 {
		s.ErrorRate = float64(s.Errors) / float64(s.Requests)
	}
	return s
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
