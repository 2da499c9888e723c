package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

var startTime = time.Now()

// HealthChecker tracks the last order outcome for the /health endpoint
type HealthChecker struct {
	mu          sync.RWMutex
	exchange    string
	environment string
	lastOrder   time.Time
	lastOrderID string
	pending     int
	errors      []string
}

// HealthStatus is the /health response body
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Exchange    string    `json:"exchange"`
	Environment string    `json:"environment"`
	LastOrder   time.Time `json:"last_order,omitempty"`
	LastOrderID string    `json:"last_order_id,omitempty"`
	PendingJobs int       `json:"pending_jobs"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

// maxHealthErrors caps the error history kept for /health
const maxHealthErrors = 10

func NewHealthChecker(exchange, environment string) *HealthChecker {
	return &HealthChecker{
		exchange:    exchange,
		environment: environment,
		errors:      make([]string, 0),
	}
}

// RecordOrder notes an accepted order
func (h *HealthChecker) RecordOrder(orderID string, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastOrder = at
	h.lastOrderID = orderID
}

// RecordError appends to the bounded error history
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > maxHealthErrors {
		h.errors = h.errors[len(h.errors)-maxHealthErrors:]
	}
}

// SetPending records how many scheduled orders are still armed
func (h *HealthChecker) SetPending(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = n
}

// Status returns a snapshot of the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if len(h.errors) > 0 {
		status = "degraded"
	}

	return HealthStatus{
		Status:      status,
		Timestamp:   time.Now(),
		Exchange:    h.exchange,
		Environment: h.environment,
		LastOrder:   h.lastOrder,
		LastOrderID: h.lastOrderID,
		PendingJobs: h.pending,
		Uptime:      time.Since(startTime).String(),
		Errors:      append([]string(nil), h.errors...),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(health)
}
