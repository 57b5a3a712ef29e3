package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the desk's Prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	deskActions     *prometheus.CounterVec
	ticketsOnDesk   prometheus.Gauge
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repairdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repairdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repairdesk_http_errors_total",
			Help: "Total number of failed HTTP requests by error code",
		}, []string{"method", "path", "code"}),
		deskActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repairdesk_desk_actions_total",
			Help: "Completed desk actions",
		}, []string{"action"}),
		ticketsOnDesk: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "repairdesk_tickets",
			Help: "Tickets currently held by the desk",
		}),
	}
	m.registry.MustRegister(m.requestCount, m.requestDuration, m.errorCount, m.deskActions, m.ticketsOnDesk)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, path, code).Inc()
}

// RecordAction counts a desk action and refreshes the ticket gauge.
func (m *Metrics) RecordAction(action string, tickets int) {
	if m == nil {
		return
	}
	m.deskActions.WithLabelValues(action).Inc()
	m.ticketsOnDesk.Set(float64(tickets))
}
