package rest

import (
	"net/http"
	"sync/atomic"
	"time"
)

// recordCounter reports the number of live records.
type recordCounter interface {
	Count() int
}

// subscriberCounter reports the number of registered change observers.
type subscriberCounter interface {
	Len() int
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	records  recordCounter
	notifier subscriberCounter
	version  string
	draining atomic.Bool
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(records recordCounter, notifier subscriberCounter, version string) *HealthHandler {
	return &HealthHandler{records: records, notifier: notifier, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status string `json:"status"`
	Count  *int   `json:"count,omitempty"`
}

// Drain makes the readiness probe fail so load balancers stop routing new
// traffic during shutdown.
func (h *HealthHandler) Drain() { h.draining.Store(true) }

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 while serving, 503 once draining.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "draining",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. Reports record and observer counts and
// includes the build version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	records := h.records.Count()
	observers := h.notifier.Len()

	overallStatus := "ok"
	status := http.StatusOK
	if h.draining.Load() {
		overallStatus = "draining"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:  overallStatus,
		Version: h.version,
		Components: map[string]CompStatus{
			"store":    {Status: "ok", Count: &records},
			"notifier": {Status: overallStatus, Count: &observers},
		},
		Timestamp: time.Now(),
	})
}
