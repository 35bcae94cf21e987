package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAck  = "ack"
	OutcomeNack = "nack"
)

// MessagingMetrics records publish and consume outcomes per queue.
type MessagingMetrics struct {
	consumed  *prometheus.CounterVec
	published *prometheus.CounterVec
}

// NewMessagingMetrics registers the messaging metrics on the provided registerer.
func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	if reg == nil {
		return &MessagingMetrics{}
	}
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_consumed_total",
		Help: "Messages consumed per queue, labelled by ack/nack outcome.",
	}, []string{"queue", "outcome"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_published_total",
		Help: "Messages published per queue.",
	}, []string{"queue"})
	reg.MustRegister(consumed, published)
	return &MessagingMetrics{
		consumed:  consumed,
		published: published,
	}
}

// IncConsumed increments the consumed counter for the queue/outcome pair.
func (m *MessagingMetrics) IncConsumed(queue, outcome string) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.WithLabelValues(queue, outcome).Inc()
}

// IncPublished increments the published counter for the queue.
func (m *MessagingMetrics) IncPublished(queue string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(queue).Inc()
}
