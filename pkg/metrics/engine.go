package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records cache and event-store behavior for the aggregation engine.
type EngineMetrics struct {
	cacheRequests *prometheus.CounterVec
	storeRequests *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// Cache outcomes.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheBypass = "bypass"
	CacheError  = "error"
)

// Store outcomes.
const (
	StoreSuccess = "success"
	StoreRetry   = "retry"
	StoreFailure = "failure"
)

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups by outcome.",
	}, []string{"outcome"})
	storeRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "event_store_requests_total",
		Help: "Event store searches by outcome.",
	}, []string{"outcome"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "event_store_request_seconds",
		Help:    "Duration of event store searches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(cacheRequests, storeRequests, storeDuration)
	return &EngineMetrics{
		cacheRequests: cacheRequests,
		storeRequests: storeRequests,
		storeDuration: storeDuration,
	}
}

// IncCache increments the cache counter for the given outcome.
func (e *EngineMetrics) IncCache(outcome string) {
	if e == nil || e.cacheRequests == nil {
		return
	}
	e.cacheRequests.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStore increments the store counter for the given outcome.
func (e *EngineMetrics) IncStore(outcome string) {
	if e == nil || e.storeRequests == nil {
		return
	}
	e.storeRequests.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveStoreDuration records a search duration for the given outcome.
func (e *EngineMetrics) ObserveStoreDuration(outcome string, duration time.Duration) {
	if e == nil || e.storeDuration == nil {
		return
	}
	e.storeDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
