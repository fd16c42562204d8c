package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aksi-clean/api/internal/repositories"
)

var (
	// ErrBranchInvalidInput indicates a malformed branch lookup.
	ErrBranchInvalidInput = errors.New("branch: invalid input")
	// ErrBranchNotFound indicates the requested branch does not exist.
	ErrBranchNotFound = errors.New("branch: not found")
	// ErrBranchUnavailable indicates the branch backend failed.
	ErrBranchUnavailable = errors.New("branch: unavailable")
)

// BranchServiceDeps bundles dependencies for NewBranchService.
type BranchServiceDeps struct {
	Repository repositories.BranchRepository
}

type branchService struct {
	repo repositories.BranchRepository
}

// NewBranchService wires a BranchService backed by the given repository.
func NewBranchService(deps BranchServiceDeps) (BranchService, error) {
	if deps.Repository == nil {
		return nil, errors.New("branch service requires repository")
	}
	return &branchService{repo: deps.Repository}, nil
}

var _ BranchService = (*branchService)(nil)

func (s *branchService) GetBranch(ctx context.Context, branchID string) (Branch, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return Branch{}, fmt.Errorf("%w: branch id is required", ErrBranchInvalidInput)
	}
	branch, err := s.repo.FindByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Branch{}, fmt.Errorf("%w: %v", ErrBranchNotFound, err)
		}
		return Branch{}, fmt.Errorf("%w: %v", ErrBranchUnavailable, err)
	}
	return branch, nil
}

func (s *branchService) ListBranches(ctx context.Context) ([]Branch, error) {
	branches, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBranchUnavailable, err)
	}
	return branches, nil
}
