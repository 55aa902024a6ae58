package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/xiaot623/audrey/internal/domain"
)

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveChat(domain.ChatOutcomeResponded)
	m.ObserveChat(domain.ChatOutcomeResponded)
	m.ObserveChat(domain.ChatOutcomeGatewayFailed)
	m.ObserveCompletion(250 * time.Millisecond)
	m.ObserveListing(7)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.chatRequests.WithLabelValues("responded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.chatRequests.WithLabelValues("gateway_failed")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.recordsListed))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveChat(domain.ChatOutcomeResponded)
	m.ObserveCompletion(time.Second)
	m.ObserveListing(1)
}
