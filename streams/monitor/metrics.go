package monitor

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks feed connection churn and message traffic.
type Metrics struct {
	connects          prometheus.Counter
	disconnects       prometheus.Counter
	messagesProcessed prometheus.Counter
	processErrors     prometheus.Counter
}

// NewMetrics constructs and registers the feed metrics on the given registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "monitor",
			Name:      "connects_total",
			Help:      "Number of successful feed connections, including reconnects.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "monitor",
			Name:      "disconnects_total",
			Help:      "Number of times the feed connection was lost.",
		}),
		messagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "monitor",
			Name:      "messages_processed_total",
			Help:      "Number of feed messages handled without error.",
		}),
		processErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "puckswap",
			Subsystem: "monitor",
			Name:      "message_errors_total",
			Help:      "Number of feed messages that failed to process.",
		}),
	}

	registry.MustRegister(m.connects, m.disconnects, m.messagesProcessed, m.processErrors)
	return m
}
