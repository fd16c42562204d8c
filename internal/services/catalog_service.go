package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
)

var (
	// ErrCatalogInvalidInput indicates missing or malformed lookup parameters.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the requested catalog entry does not exist.
	ErrCatalogNotFound = errors.New("catalog: not found")
	// ErrCatalogUnavailable indicates the catalog backend failed.
	ErrCatalogUnavailable = errors.New("catalog: unavailable")
)

// CatalogServiceDeps bundles dependencies for NewCatalogService.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
}

type catalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService wires a CatalogService backed by the given repository.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errors.New("catalog service requires repository")
	}
	return &catalogService{repo: deps.Repository}, nil
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) ListCategories(ctx context.Context) ([]ServiceCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, translateCatalogError(err)
	}
	return categories, nil
}

func (s *catalogService) ListPriceListItems(ctx context.Context, categoryCode string) ([]PriceListItem, error) {
	categoryCode = strings.TrimSpace(categoryCode)
	if categoryCode == "" {
		return nil, fmt.Errorf("%w: category code is required", ErrCatalogInvalidInput)
	}
	items, err := s.repo.ListPriceListItems(ctx, categoryCode)
	if err != nil {
		return nil, translateCatalogError(err)
	}
	return items, nil
}

func (s *catalogService) GetPriceListItem(ctx context.Context, categoryCode, itemName string) (PriceListItem, error) {
	categoryCode = strings.TrimSpace(categoryCode)
	itemName = strings.TrimSpace(itemName)
	if categoryCode == "" || itemName == "" {
		return PriceListItem{}, fmt.Errorf("%w: category code and item name are required", ErrCatalogInvalidInput)
	}
	item, err := s.repo.FindPriceListItem(ctx, categoryCode, itemName)
	if err != nil {
		return PriceListItem{}, translateCatalogError(err)
	}
	return item, nil
}

func (s *catalogService) ListModifiers(ctx context.Context) ([]PriceModifier, error) {
	modifiers, err := s.repo.ListModifiers(ctx)
	if err != nil {
		return nil, translateCatalogError(err)
	}
	return modifiers, nil
}

func (s *catalogService) GetModifiers(ctx context.Context, codes []string) ([]PriceModifier, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("%w: modifier codes must be non-empty", ErrCatalogInvalidInput)
		}
		cleaned = append(cleaned, code)
	}
	if len(cleaned) == 0 {
		return []PriceModifier{}, nil
	}
	modifiers, err := s.repo.FindModifiers(ctx, cleaned)
	if err != nil {
		return nil, translateCatalogError(err)
	}
	return modifiers, nil
}

func (s *catalogService) UpsertPriceListItem(ctx context.Context, item PriceListItem) (PriceListItem, error) {
	item.CategoryCode = strings.TrimSpace(item.CategoryCode)
	item.Name = strings.TrimSpace(item.Name)
	item.UnitOfMeasure = strings.TrimSpace(item.UnitOfMeasure)
	switch {
	case item.CategoryCode == "":
		return PriceListItem{}, fmt.Errorf("%w: category code is required", ErrCatalogInvalidInput)
	case item.Name == "":
		return PriceListItem{}, fmt.Errorf("%w: item name is required", ErrCatalogInvalidInput)
	case item.UnitOfMeasure == "":
		return PriceListItem{}, fmt.Errorf("%w: unit of measure is required", ErrCatalogInvalidInput)
	case item.BasePrice <= 0:
		return PriceListItem{}, fmt.Errorf("%w: base price must be positive", ErrCatalogInvalidInput)
	}
	if item.PriceBlack != nil && *item.PriceBlack <= 0 {
		return PriceListItem{}, fmt.Errorf("%w: black tier price must be positive", ErrCatalogInvalidInput)
	}
	if item.PriceColor != nil && *item.PriceColor <= 0 {
		return PriceListItem{}, fmt.Errorf("%w: color tier price must be positive", ErrCatalogInvalidInput)
	}
	saved, err := s.repo.UpsertPriceListItem(ctx, item)
	if err != nil {
		return PriceListItem{}, translateCatalogError(err)
	}
	return saved, nil
}

func (s *catalogService) UpsertModifier(ctx context.Context, modifier PriceModifier) (PriceModifier, error) {
	modifier.Code = strings.TrimSpace(modifier.Code)
	modifier.Name = strings.TrimSpace(modifier.Name)
	if modifier.Code == "" {
		return PriceModifier{}, fmt.Errorf("%w: modifier code is required", ErrCatalogInvalidInput)
	}
	if modifier.Name == "" {
		return PriceModifier{}, fmt.Errorf("%w: modifier name is required", ErrCatalogInvalidInput)
	}
	switch modifier.Kind {
	case domain.ModifierPercentage:
		if modifier.ValueBps == 0 {
			return PriceModifier{}, fmt.Errorf("%w: percentage modifier requires value bps", ErrCatalogInvalidInput)
		}
	case domain.ModifierFixedAmount:
		if modifier.Amount <= 0 {
			return PriceModifier{}, fmt.Errorf("%w: fixed amount modifier requires a positive amount", ErrCatalogInvalidInput)
		}
	case domain.ModifierRangePercentage:
		if modifier.MinBps > modifier.MaxBps {
			return PriceModifier{}, fmt.Errorf("%w: range modifier bounds are inverted", ErrCatalogInvalidInput)
		}
	default:
		return PriceModifier{}, fmt.Errorf("%w: unknown modifier kind %q", ErrCatalogInvalidInput, modifier.Kind)
	}
	saved, err := s.repo.UpsertModifier(ctx, modifier)
	if err != nil {
		return PriceModifier{}, translateCatalogError(err)
	}
	return saved, nil
}

func translateCatalogError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}
