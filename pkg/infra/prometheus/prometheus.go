package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		0.5, 1, 2.5,
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xssguard_requests_total",
			Help: "Total number of requests that went through the guard",
		},
		[]string{"method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xssguard_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"method"},
	)

	DetectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xssguard_detections_total",
			Help: "Requests in which at least one xss signature matched",
		},
		[]string{"action"},
	)

	StrippedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "xssguard_stripped_signatures_total",
			Help: "Signatures removed from request urls, by pattern",
		},
		[]string{"pattern"},
	)

	EventsDroppedTotal = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "xssguard_events_dropped_total",
			Help: "Detection events dropped because the publisher queue was full or publishing failed",
		},
	)
)

func init() {
	registerer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

type MetricsConfig struct {
	EnableLatency bool // Latency histogram per method
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency: true,
	}
}

var Config = DefaultMetricsConfig()

func Initialize(cfg MetricsConfig) {
	Config = cfg
}

// Registry exposes the private registry for the /metrics handler.
func Registry() *prometheus.Registry {
	return registry
}
