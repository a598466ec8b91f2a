package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution and cache counters, partitioned by network where it matters.

var (
	// Resolver
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Total resolutions by outcome",
	}, []string{"network", "outcome"})

	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "firstdeploy",
		Subsystem: "resolver",
		Name:      "duration_seconds",
		Help:      "End-to-end resolution duration",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"network"})

	// Cache
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by layer and result",
	}, []string{"layer", "result"})

	CacheWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "cache",
		Name:      "write_errors_total",
		Help:      "Best-effort cache writes that failed",
	}, []string{"layer"})

	// Providers
	ProviderCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Provider resolutions by provider and status",
	}, []string{"provider", "status"})

	ProviderPagesWalked = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "firstdeploy",
		Subsystem: "provider",
		Name:      "pages_walked",
		Help:      "Pages requested per chain RPC backward walk",
		Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
	})

	// RPC plumbing
	RateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Calls delayed by the inter-page rate limiter",
	}, []string{"provider"})

	BreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firstdeploy",
		Subsystem: "rpc",
		Name:      "breaker_transitions_total",
		Help:      "Endpoint circuit breaker state transitions",
	}, []string{"endpoint", "to"})
)
