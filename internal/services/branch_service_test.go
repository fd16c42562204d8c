package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
)

type stubBranchRepository struct {
	mu       sync.Mutex
	branches map[string]domain.Branch
	err      error
}

func (s *stubBranchRepository) FindByID(ctx context.Context, branchID string) (domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Branch{}, s.err
	}
	branch, ok := s.branches[branchID]
	if !ok {
		return domain.Branch{}, fmt.Errorf("%w: branch %s", repositories.ErrNotFound, branchID)
	}
	return branch, nil
}

func (s *stubBranchRepository) ListActive(ctx context.Context) ([]domain.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var active []domain.Branch
	for _, branch := range s.branches {
		if branch.Active {
			active = append(active, branch)
		}
	}
	return active, nil
}

func TestBranchServiceGetBranch(t *testing.T) {
	repo := &stubBranchRepository{branches: map[string]domain.Branch{
		"br-1": {ID: "br-1", Code: "KYIV", Name: "Київ Центр", Active: true},
	}}
	svc, err := NewBranchService(BranchServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("NewBranchService: %v", err)
	}

	branch, err := svc.GetBranch(context.Background(), "br-1")
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if branch.Code != "KYIV" {
		t.Fatalf("unexpected branch %q", branch.Code)
	}

	if _, err := svc.GetBranch(context.Background(), ""); !errors.Is(err, ErrBranchInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.GetBranch(context.Background(), "br-404"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	repo.err = errors.New("firestore: unavailable")
	if _, err := svc.ListBranches(context.Background()); !errors.Is(err, ErrBranchUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
