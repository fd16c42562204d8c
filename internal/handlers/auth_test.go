package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/services"
)

type stubAuthService struct {
	mu       sync.Mutex
	password string
	operator domain.Operator
	err      error
}

func (s *stubAuthService) Login(ctx context.Context, cmd services.LoginCommand) (services.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.LoginResult{}, s.err
	}
	if cmd.Login == "" || cmd.Password == "" {
		return services.LoginResult{}, services.ErrAuthInvalidInput
	}
	if cmd.Login != s.operator.Login || cmd.Password != s.password {
		return services.LoginResult{}, services.ErrAuthInvalidCredentials
	}
	return services.LoginResult{
		Token:     "stub-token",
		ExpiresAt: time.Date(2026, time.February, 15, 11, 0, 0, 0, time.UTC),
		Operator:  s.operator,
	}, nil
}

func newAuthTestRouter(svc *stubAuthService) chi.Router {
	return NewRouter(WithAuthRoutes(NewAuthHandlers(svc).Routes))
}

func TestAuthHandlersLogin(t *testing.T) {
	svc := &stubAuthService{
		password: "correct horse",
		operator: domain.Operator{
			ID:       "op-1",
			Login:    "olena",
			Name:     "Олена Коваленко",
			BranchID: "br-1",
			Roles:    []string{"operator"},
		},
	}
	router := newAuthTestRouter(svc)

	rec := postJSON(t, router, "/api/v1/auth/login", loginRequest{Login: "olena", Password: "correct horse"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token != "stub-token" {
		t.Fatalf("token = %q", resp.Token)
	}
	if resp.ExpiresAt == "" {
		t.Fatal("expected an expiry timestamp")
	}
	if resp.Operator.ID != "op-1" || resp.Operator.BranchID != "br-1" {
		t.Fatalf("unexpected operator payload %+v", resp.Operator)
	}
}

func TestAuthHandlersLoginRejectsBadPassword(t *testing.T) {
	svc := &stubAuthService{
		password: "correct horse",
		operator: domain.Operator{ID: "op-1", Login: "olena"},
	}
	router := newAuthTestRouter(svc)

	rec := postJSON(t, router, "/api/v1/auth/login", loginRequest{Login: "olena", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusUnauthorized, rec.Body.String())
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error != "invalid_credentials" {
		t.Fatalf("error code = %q", envelope.Error)
	}
}

func TestAuthHandlersLoginRejectsMissingFields(t *testing.T) {
	router := newAuthTestRouter(&stubAuthService{})

	rec := postJSON(t, router, "/api/v1/auth/login", loginRequest{Login: "olena"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}
