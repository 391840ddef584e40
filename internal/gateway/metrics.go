// ABOUTME: Prometheus metrics for chat relay traffic
// ABOUTME: Counters by outcome, upstream error count, and in-flight stream gauge

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the gateway's Prometheus collectors. Each Gateway gets its
// own registry so repeated construction (tests, embedding) never trips
// duplicate registration.
type metrics struct {
	registry       *prometheus.Registry
	chatRequests   *prometheus.CounterVec
	upstreamErrors prometheus.Counter
	activeStreams  prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		chatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rules_gateway_chat_requests_total",
			Help: "Chat requests by outcome (ok, invalid, upstream_error, stream_error, cancelled, error).",
		}, []string{"outcome"}),
		upstreamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rules_gateway_upstream_errors_total",
			Help: "Upstream agent service errors across all endpoints.",
		}),
		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rules_gateway_active_streams",
			Help: "Chat streams currently being relayed.",
		}),
	}
}
