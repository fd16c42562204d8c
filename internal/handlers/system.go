package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/services"
)

const maxCounterBodySize = 4 * 1024

// SystemHandlers exposes operational endpoints behind the /internal group.
type SystemHandlers struct {
	authn  *auth.Authenticator
	system services.SystemService
}

// NewSystemHandlers constructs a new SystemHandlers instance.
func NewSystemHandlers(authn *auth.Authenticator, system services.SystemService) *SystemHandlers {
	return &SystemHandlers{
		authn:  authn,
		system: system,
	}
}

// Routes registers the /internal endpoints. Counter mutation is restricted to
// managers and admins.
func (h *SystemHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleManager, auth.RoleAdmin))
	}
	r.Get("/health", h.healthReport)
	r.Post("/counters/{counterID}:next", h.nextCounterValue)
}

type counterRequest struct {
	Step int64 `json:"step"`
}

type counterResponse struct {
	CounterID string `json:"counter_id"`
	Value     int64  `json:"value"`
}

type healthReportResponse struct {
	Status      string                `json:"status"`
	Checks      map[string]checkEntry `json:"checks"`
	Version     string                `json:"version,omitempty"`
	CommitSHA   string                `json:"commit_sha,omitempty"`
	Environment string                `json:"environment,omitempty"`
	Uptime      string                `json:"uptime,omitempty"`
	GeneratedAt string                `json:"generated_at"`
}

func (h *SystemHandlers) healthReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("system_unavailable", "system service unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.system.HealthReport(ctx)
	if err != nil {
		writeSystemError(ctx, w, err)
		return
	}

	checks := make(map[string]checkEntry, len(report.Checks))
	for name, check := range report.Checks {
		entry := checkEntry{Status: check.Status, Detail: check.Detail, Error: check.Error}
		if check.Latency > 0 {
			entry.Latency = check.Latency.String()
		}
		checks[name] = entry
	}

	response := healthReportResponse{
		Status:      report.Status,
		Checks:      checks,
		Version:     report.Version,
		CommitSHA:   report.CommitSHA,
		Environment: report.Environment,
		GeneratedAt: formatTime(report.GeneratedAt),
	}
	if report.Uptime > 0 {
		response.Uptime = report.Uptime.String()
	}
	writeJSONResponse(w, http.StatusOK, response)
}

func (h *SystemHandlers) nextCounterValue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("system_unavailable", "system service unavailable", http.StatusServiceUnavailable))
		return
	}

	counterID := strings.TrimSpace(chi.URLParam(r, "counterID"))
	if counterID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "counter id is required", http.StatusBadRequest))
		return
	}

	var req counterRequest
	if err := decodeJSONBody(r, maxCounterBodySize, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeBodyError(ctx, w, err)
		return
	}

	value, err := h.system.NextCounterValue(ctx, services.CounterCommand{
		CounterID: counterID,
		Step:      req.Step,
	})
	if err != nil {
		writeSystemError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, counterResponse{CounterID: counterID, Value: value})
}

func writeSystemError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCounterInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCounterExhausted):
		httpx.WriteError(ctx, w, httpx.NewError("counter_exhausted", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("system_error", "failed to process system request", http.StatusInternalServerError))
	}
}
