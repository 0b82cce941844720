package statecache

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks cache update traffic and notification fan-out cost.
type Metrics struct {
	updatesApplied prometheus.Counter
	updatesDropped prometheus.Counter
	notifyDuration prometheus.Histogram
	poolsTracked   prometheus.Gauge
}

// NewMetrics constructs and registers the cache metrics on the given registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		updatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "statecache",
			Name:      "updates_applied_total",
			Help:      "Number of pool snapshot updates accepted by the cache.",
		}),
		updatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "statecache",
			Name:      "updates_dropped_total",
			Help:      "Number of pool snapshot updates dropped for snapshot-version regression.",
		}),
		notifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "puckswap",
			Subsystem: "statecache",
			Name:      "notify_duration_seconds",
			Help:      "Time spent notifying subscribers of an accepted update.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 6),
		}),
		poolsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "puckswap",
			Subsystem: "statecache",
			Name:      "pools_tracked",
			Help:      "Number of pools currently held by the cache.",
		}),
	}

	registry.MustRegister(m.updatesApplied, m.updatesDropped, m.notifyDuration, m.poolsTracked)
	return m
}
