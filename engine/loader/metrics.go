package loader

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "oxy_gltf"

// loaderMetrics holds Prometheus metrics for parse operations.
type loaderMetrics struct {
	dependencies  *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	warnings      prometheus.Counter
	errors        *prometheus.CounterVec
	parseDuration prometheus.Histogram
	parses        prometheus.Counter
}

// newLoaderMetrics creates loader metrics and registers them with reg when it is non-nil.
// Collectors already registered by another loader on the same registry are reused.
func newLoaderMetrics(reg prometheus.Registerer) *loaderMetrics {
	m := &loaderMetrics{
		dependencies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "dependencies_total",
			Help:      "Total number of dependencies constructed, by kind",
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "cache_hits_total",
			Help:      "Total number of dependency requests served from the cache, by kind",
		}, []string{"kind"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "warnings_total",
			Help:      "Total number of non-fatal parse warnings",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "errors_total",
			Help:      "Total number of failed parses, by error class",
		}, []string{"class"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "parse_duration_seconds",
			Help:      "Time from parse dispatch to completion",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		parses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "parser",
			Name:      "parses_total",
			Help:      "Total number of parses started",
		}),
	}

	if reg == nil {
		return m
	}

	m.dependencies = register(reg, m.dependencies)
	m.cacheHits = register(reg, m.cacheHits)
	m.warnings = register(reg, m.warnings)
	m.errors = register(reg, m.errors)
	m.parseDuration = register(reg, m.parseDuration)
	m.parses = register(reg, m.parses)
	return m
}

// register registers c, returning the existing collector when an identical one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
