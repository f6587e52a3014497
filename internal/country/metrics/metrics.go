package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for directory access and page assembly.
type Metrics struct {
	// Upstream call latency by operation ("all", "by_code") and outcome
	DirectoryLatency *prometheus.HistogramVec

	// Cache lookups by entry kind ("all", "country") and result ("hit", "miss", "stale", "error")
	CacheLookups *prometheus.CounterVec

	// 0 = closed (healthy), 1 = open (serving last known good data)
	BreakerState prometheus.Gauge

	BorderFailures prometheus.Counter
	BorderFanout   prometheus.Histogram
}

// New registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DirectoryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atlas_directory_request_duration_seconds",
			Help:    "Duration of country directory requests by operation and outcome",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_directory_cache_lookups_total",
			Help: "Directory cache lookups by entry kind and result",
		}, []string{"kind", "result"}),

		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "atlas_directory_circuit_breaker_state",
			Help: "Directory circuit breaker state (0=closed/healthy, 1=open/degraded)",
		}),

		BorderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_border_lookup_failures_total",
			Help: "Border country lookups that failed and were omitted or failed the page",
		}),

		BorderFanout: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atlas_border_fanout_duration_seconds",
			Help:    "Duration of resolving all border countries for one detail page",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveDirectory records one upstream call.
func (m *Metrics) ObserveDirectory(operation, outcome string, d time.Duration) {
	if m != nil {
		m.DirectoryLatency.WithLabelValues(operation, outcome).Observe(d.Seconds())
	}
}

// IncCacheLookup records a cache lookup result.
func (m *Metrics) IncCacheLookup(kind, result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(kind, result).Inc()
	}
}

// SetBreakerState sets the breaker gauge.
func (m *Metrics) SetBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}

// IncBorderFailures counts failed border lookups.
func (m *Metrics) IncBorderFailures(n int) {
	if m != nil && n > 0 {
		m.BorderFailures.Add(float64(n))
	}
}

// ObserveBorderFanout records the duration of a border fan-out.
func (m *Metrics) ObserveBorderFanout(d time.Duration) {
	if m != nil {
		m.BorderFanout.Observe(d.Seconds())
	}
}
