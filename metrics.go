package actionz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded by the fetch pipeline.
const (
	OutcomeSuccess        = "success"
	OutcomeError          = "error"
	OutcomeTransportError = "transport_error"
	OutcomeSuperseded     = "superseded"
	OutcomeDeduplicated   = "deduplicated"
)

// Metrics holds the Prometheus collectors for adapters and fetch pipelines.
// A nil *Metrics records nothing.
type Metrics struct {
	adapterEvents *prometheus.CounterVec
	adapterEmits  *prometheus.CounterVec
	fetchStatus   *prometheus.CounterVec
	fetchRequests *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		adapterEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actionz",
				Subsystem: "adapter",
				Name:      "events_total",
				Help:      "Native events observed by rate adapters",
			},
			[]string{"kind"},
		),
		adapterEmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actionz",
				Subsystem: "adapter",
				Name:      "emits_total",
				Help:      "Aggregate events dispatched by rate adapters",
			},
			[]string{"kind"},
		),
		fetchStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actionz",
				Subsystem: "fetch",
				Name:      "status_total",
				Help:      "Status events dispatched by fetch pipelines",
			},
			[]string{"status"},
		),
		fetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "actionz",
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Lookups by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "actionz",
				Subsystem: "fetch",
				Name:      "request_duration_seconds",
				Help:      "Round trip of lookups that completed",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.adapterEvents, m.adapterEmits, m.fetchStatus, m.fetchRequests, m.fetchDuration)
	}
	return m
}

func (m *Metrics) observeEvent(kind Kind) {
	if m == nil {
		return
	}
	m.adapterEvents.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeEmit(kind Kind) {
	if m == nil {
		return
	}
	m.adapterEmits.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) observeStatus(status Status) {
	if m == nil {
		return
	}
	m.fetchStatus.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) observeRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchRequests.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.fetchDuration.Observe(d.Seconds())
	}
}
