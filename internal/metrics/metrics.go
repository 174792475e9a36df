package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bistro"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "BFF HTTP requests by route and status.",
		},
		[]string{"route", "status"},
	)

	cmsCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cms_calls_total",
			Help:      "CMS calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	cmsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cms_call_duration_seconds",
			Help:      "CMS call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "CMS response cache lookups by result.",
		},
		[]string{"result"},
	)

	storeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_events_total",
			Help:      "Cart and favorites changes by event type.",
		},
		[]string{"type"},
	)

	loginThrottled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_throttled_total",
			Help:      "Login attempts rejected by the throttle.",
		},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open client sessions.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, cmsCalls, cmsLatency, cacheLookups, storeEvents, loginThrottled, activeSessions)
	})
}

// IncHTTP increments the counter for a route and status code label.
func IncHTTP(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}

// ObserveCMS records one CMS round-trip.
func ObserveCMS(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cmsCalls.WithLabelValues(operation, outcome).Inc()
	cmsLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func IncCacheHit()  { cacheLookups.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }

func IncStoreEvent(eventType string) {
	storeEvents.WithLabelValues(eventType).Inc()
}

func IncLoginThrottled() {
	loginThrottled.Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
