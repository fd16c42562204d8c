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

// BranchHandlers serves branch reference data.
type BranchHandlers struct {
	authn    *auth.Authenticator
	branches services.BranchService
}

// NewBranchHandlers constructs a new BranchHandlers instance.
func NewBranchHandlers(authn *auth.Authenticator, branches services.BranchService) *BranchHandlers {
	return &BranchHandlers{
		authn:    authn,
		branches: branches,
	}
}

// Routes registers the /branches endpoints.
func (h *BranchHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listBranches)
	r.Get("/{branchID}", h.getBranch)
}

type workingHoursPayload struct {
	Weekday int    `json:"weekday"`
	Open    string `json:"open,omitempty"`
	Close   string `json:"close,omitempty"`
	DayOff  bool   `json:"day_off,omitempty"`
}

type branchPayload struct {
	ID       string                `json:"id"`
	Code     string                `json:"code"`
	Name     string                `json:"name"`
	Address  string                `json:"address,omitempty"`
	Phone    string                `json:"phone,omitempty"`
	Active   bool                  `json:"active"`
	Schedule []workingHoursPayload `json:"schedule,omitempty"`
}

type branchResponse struct {
	Branch branchPayload `json:"branch"`
}

type branchListResponse struct {
	Items []branchPayload `json:"items"`
}

func (h *BranchHandlers) listBranches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.branches == nil {
		httpx.WriteError(ctx, w, httpx.NewError("branch_unavailable", "branch service unavailable", http.StatusServiceUnavailable))
		return
	}

	branches, err := h.branches.ListBranches(ctx)
	if err != nil {
		writeBranchError(ctx, w, err)
		return
	}

	items := make([]branchPayload, 0, len(branches))
	for _, branch := range branches {
		items = append(items, buildBranchPayload(branch))
	}
	writeJSONResponse(w, http.StatusOK, branchListResponse{Items: items})
}

func (h *BranchHandlers) getBranch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.branches == nil {
		httpx.WriteError(ctx, w, httpx.NewError("branch_unavailable", "branch service unavailable", http.StatusServiceUnavailable))
		return
	}

	branchID := strings.TrimSpace(chi.URLParam(r, "branchID"))
	branch, err := h.branches.GetBranch(ctx, branchID)
	if err != nil {
		writeBranchError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, branchResponse{Branch: buildBranchPayload(branch)})
}

func buildBranchPayload(branch services.Branch) branchPayload {
	payload := branchPayload{
		ID:      branch.ID,
		Code:    branch.Code,
		Name:    branch.Name,
		Address: branch.Address,
		Phone:   branch.Phone,
		Active:  branch.Active,
	}
	for _, hours := range branch.Schedule {
		payload.Schedule = append(payload.Schedule, workingHoursPayload{
			Weekday: int(hours.Weekday),
			Open:    hours.Open,
			Close:   hours.Close,
			DayOff:  hours.DayOff,
		})
	}
	return payload
}

func writeBranchError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrBranchInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrBranchNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("branch_not_found", "branch not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("branch_unavailable", "failed to load branch data", http.StatusServiceUnavailable))
	}
}
