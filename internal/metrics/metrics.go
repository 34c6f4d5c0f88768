package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry is the dedicated Prometheus registry for the relay.
	Registry = prometheus.NewRegistry()

	// Connections tracks registered WebSocket connections.
	Connections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wirerelay", Name: "connections", Help: "Registered WebSocket connections.",
	})
	// OnlineUsers tracks identities with at least one live connection.
	OnlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wirerelay", Name: "online_users", Help: "Identities with at least one live connection.",
	})
	// Messages counts submitted chat messages by result (committed, persist_failed).
	Messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wirerelay", Name: "messages_total", Help: "Chat messages by result."},
		[]string{"result"},
	)
	// Deliveries counts events enqueued to connections during fan-out.
	Deliveries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wirerelay", Name: "broadcast_deliveries_total", Help: "Events enqueued to connections.",
	})
	// SlowConsumers counts connections closed because their outbound queue overflowed.
	SlowConsumers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wirerelay", Name: "slow_consumer_disconnects_total", Help: "Connections closed on queue overflow.",
	})
	// InboundEvents counts inbound WebSocket events by type.
	InboundEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wirerelay", Name: "inbound_events_total", Help: "Inbound events by type."},
		[]string{"type"},
	)
	// PersistLatency records gateway append latency in seconds.
	PersistLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wirerelay", Name: "persist_duration_seconds", Help: "Message append latency.",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			Connections,
			OnlineUsers,
			Messages,
			Deliveries,
			SlowConsumers,
			InboundEvents,
			PersistLatency,
			HTTPRequests,
			HTTPDuration,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	RegisterDefault()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
