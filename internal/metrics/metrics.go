// Package metrics exposes Prometheus instrumentation for the chat pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xiaot623/audrey/internal/domain"
)

const namespace = "audrey"

// Metrics holds the collectors registered for one server.
type Metrics struct {
	chatRequests       *prometheus.CounterVec
	completionDuration prometheus.Histogram
	recordsListed      prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		chatRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by terminal outcome.",
		}, []string{"outcome"}),
		completionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion provider calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		recordsListed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversation_records_listed",
			Help:      "Number of records returned by the last full listing.",
		}),
	}
}

// ObserveChat counts a chat request that ended with outcome.
func (m *Metrics) ObserveChat(outcome domain.ChatOutcome) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(string(outcome)).Inc()
}

// ObserveCompletion records the duration of one provider call.
func (m *Metrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.completionDuration.Observe(d.Seconds())
}

// ObserveListing records the size of a full listing.
func (m *Metrics) ObserveListing(n int) {
	if m == nil {
		return
	}
	m.recordsListed.Set(float64(n))
}
