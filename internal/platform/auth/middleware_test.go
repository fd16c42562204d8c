package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestManager(t *testing.T, clock func() time.Time) *JWTManager {
	t.Helper()
	mgr, err := NewJWTManager("test-secret", "aksi-clean", time.Hour, clock)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return mgr
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	mgr := newTestManager(t, nil)
	token, err := mgr.Issue("op-1", "Олена", "br-1", []string{"Manager"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var captured *Identity
	handler := NewAuthenticator(mgr).RequireAuth(RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured == nil || captured.OperatorID != "op-1" || captured.BranchID != "br-1" {
		t.Fatalf("unexpected identity %+v", captured)
	}
	if !captured.HasRole("manager") {
		t.Fatalf("expected normalised manager role, got %v", captured.Roles)
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	mgr := newTestManager(t, nil)
	handler := NewAuthenticator(mgr).RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := newTestManager(t, func() time.Time { return issuedAt })
	token, err := issuer.Issue("op-1", "", "", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	verifier := newTestManager(t, func() time.Time { return issuedAt.Add(2 * time.Hour) })
	handler := NewAuthenticator(verifier).RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthEnforcesRoles(t *testing.T) {
	mgr := newTestManager(t, nil)
	token, err := mgr.Issue("op-2", "", "br-1", []string{RoleOperator})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := NewAuthenticator(mgr).RequireAuth(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAuthAppliesFallbackRole(t *testing.T) {
	mgr := newTestManager(t, nil)
	token, err := mgr.Issue("op-3", "", "", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var captured *Identity
	handler := NewAuthenticator(mgr).RequireAuth(RoleOperator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || !captured.HasRole(RoleOperator) {
		t.Fatalf("expected fallback operator role, got %+v", captured)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	other, err := NewJWTManager("test-secret", "someone-else", time.Hour, nil)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	token, err := other.Issue("op-1", "", "", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mgr := newTestManager(t, nil)
	if _, err := mgr.Verify(context.Background(), token); err == nil {
		t.Fatal("expected issuer mismatch to fail verification")
	}
}
