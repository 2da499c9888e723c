package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Schedule events
const (
	EventScheduled = "scheduled"
	EventFired     = "fired"
	EventCancelled = "cancelled"
)

// Order outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeFailed   = "failed"
)

var (
	// Order metrics
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_trader_orders_total",
			Help: "Total number of limit orders submitted",
		},
		[]string{"exchange", "side", "outcome"},
	)

	orderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spot_trader_order_latency_seconds",
			Help:    "Round trip time of order placement requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"exchange"},
	)

	// Scheduler metrics
	scheduleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_trader_schedule_events_total",
			Help: "Scheduled job transitions",
		},
		[]string{"event"},
	)

	pendingJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spot_trader_pending_jobs",
			Help: "Number of scheduled jobs that have not fired or been cancelled",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spot_trader_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(orderLatency)
	prometheus.MustRegister(scheduleEvents)
	prometheus.MustRegister(pendingJobs)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordOrder records one order submission and how long it took
func RecordOrder(exchange, side, outcome string, elapsed time.Duration) {
	ordersTotal.WithLabelValues(exchange, side, outcome).Inc()
	orderLatency.WithLabelValues(exchange).Observe(elapsed.Seconds())
}

// RecordScheduleEvent records a job transition
func RecordScheduleEvent(event string) {
	scheduleEvents.WithLabelValues(event).Inc()
}

// SetPendingJobs updates the pending job gauge
func SetPendingJobs(n int) {
	pendingJobs.Set(float64(n))
}

// RecordError records an error metric
func RecordError(category string) {
	if category == "" {
		category = "UNKNOWN"
	}
	errorsTotal.WithLabelValues(category).Inc()
}
