package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/aksi-clean/api/internal/services"
)

// HealthHandlers serves the liveness and readiness probes. Readiness delegates
// to the system service when one is configured; liveness never does I/O.
type HealthHandlers struct {
	system    services.SystemService
	startedAt time.Time
	clock     func() time.Time
}

// NewHealthHandlers constructs probe handlers. A nil system service degrades
// readiness to the same static payload as liveness.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{
		system:    system,
		startedAt: time.Now(),
		clock:     time.Now,
	}
}

type healthResponse struct {
	Status    string                `json:"status"`
	Uptime    string                `json:"uptime"`
	Timestamp string                `json:"timestamp"`
	Checks    map[string]checkEntry `json:"checks,omitempty"`
	Version   string                `json:"version,omitempty"`
}

type checkEntry struct {
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	writeJSONResponse(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Uptime:    now.Sub(h.startedAt).String(),
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}

// Readyz reports whether downstream dependencies answer.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	if h.system == nil {
		h.Healthz(w, r)
		return
	}

	report, err := h.system.HealthReport(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, healthResponse{
			Status:    "error",
			Uptime:    now.Sub(h.startedAt).String(),
			Timestamp: now.UTC().Format(time.RFC3339),
		})
		return
	}

	status := http.StatusOK
	if !strings.EqualFold(report.Status, "ok") {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]checkEntry, len(report.Checks))
	for name, check := range report.Checks {
		entry := checkEntry{Status: check.Status, Detail: check.Detail, Error: check.Error}
		if check.Latency > 0 {
			entry.Latency = check.Latency.String()
		}
		checks[name] = entry
	}

	writeJSONResponse(w, status, healthResponse{
		Status:    report.Status,
		Uptime:    report.Uptime.String(),
		Timestamp: report.GeneratedAt.UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   report.Version,
	})
}
