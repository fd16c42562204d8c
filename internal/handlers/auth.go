package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/services"
)

const maxLoginBodySize = 4 * 1024

// AuthHandlers exposes the staff sign-in endpoint. Login is the only public
// route in the API; everything else requires the token it issues.
type AuthHandlers struct {
	auth services.AuthService
}

// NewAuthHandlers constructs a new AuthHandlers instance.
func NewAuthHandlers(auth services.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Routes registers the /auth endpoints.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.login)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type operatorPayload struct {
	ID       string   `json:"id"`
	Login    string   `json:"login"`
	Name     string   `json:"name"`
	BranchID string   `json:"branch_id,omitempty"`
	Roles    []string `json:"roles"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
	Operator  operatorPayload `json:"operator"`
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.auth == nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "auth service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if err := decodeJSONBody(r, maxLoginBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.auth.Login(ctx, services.LoginCommand{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: formatTime(result.ExpiresAt),
		Operator: operatorPayload{
			ID:       result.Operator.ID,
			Login:    result.Operator.Login,
			Name:     result.Operator.Name,
			BranchID: result.Operator.BranchID,
			Roles:    result.Operator.Roles,
		},
	})
}

func writeAuthError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrAuthInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "login or password is incorrect", http.StatusUnauthorized))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "failed to process login", http.StatusServiceUnavailable))
	}
}
