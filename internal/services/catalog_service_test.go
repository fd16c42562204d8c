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

type stubCatalogRepository struct {
	mu         sync.Mutex
	categories []domain.ServiceCategory
	items      map[string][]domain.PriceListItem
	modifiers  []domain.PriceModifier
	err        error
	findCalls  []string
}

func (s *stubCatalogRepository) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *stubCatalogRepository) ListPriceListItems(ctx context.Context, categoryCode string) ([]domain.PriceListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.items[categoryCode], nil
}

func (s *stubCatalogRepository) FindPriceListItem(ctx context.Context, categoryCode, itemName string) (domain.PriceListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls = append(s.findCalls, categoryCode+"/"+itemName)
	if s.err != nil {
		return domain.PriceListItem{}, s.err
	}
	for _, item := range s.items[categoryCode] {
		if item.Name == itemName {
			return item, nil
		}
	}
	return domain.PriceListItem{}, fmt.Errorf("%w: price list item %s", repositories.ErrNotFound, itemName)
}

func (s *stubCatalogRepository) ListModifiers(ctx context.Context) ([]domain.PriceModifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.modifiers, nil
}

func (s *stubCatalogRepository) FindModifiers(ctx context.Context, codes []string) ([]domain.PriceModifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	found := make([]domain.PriceModifier, 0, len(codes))
	for _, code := range codes {
		var match *domain.PriceModifier
		for i := range s.modifiers {
			if s.modifiers[i].Code == code {
				match = &s.modifiers[i]
				break
			}
		}
		if match == nil {
			return nil, fmt.Errorf("%w: modifiers %s", repositories.ErrNotFound, code)
		}
		found = append(found, *match)
	}
	return found, nil
}

func (s *stubCatalogRepository) UpsertPriceListItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.PriceListItem{}, s.err
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("pl-%d", len(s.items[item.CategoryCode])+1)
	}
	if s.items == nil {
		s.items = make(map[string][]domain.PriceListItem)
	}
	s.items[item.CategoryCode] = append(s.items[item.CategoryCode], item)
	return item, nil
}

func (s *stubCatalogRepository) UpsertModifier(ctx context.Context, modifier domain.PriceModifier) (domain.PriceModifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.PriceModifier{}, s.err
	}
	for i, existing := range s.modifiers {
		if existing.Code == modifier.Code {
			s.modifiers[i] = modifier
			return modifier, nil
		}
	}
	s.modifiers = append(s.modifiers, modifier)
	return modifier, nil
}

func newCatalogFixture(t *testing.T, repo *stubCatalogRepository) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Repository: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestCatalogServiceGetPriceListItem(t *testing.T) {
	repo := &stubCatalogRepository{
		items: map[string][]domain.PriceListItem{
			"CLOTHING": {{ID: "pli-1", CategoryCode: "CLOTHING", Name: "Coat", BasePrice: 10000}},
		},
	}
	svc := newCatalogFixture(t, repo)

	item, err := svc.GetPriceListItem(context.Background(), " CLOTHING ", "Coat")
	if err != nil {
		t.Fatalf("GetPriceListItem: %v", err)
	}
	if item.ID != "pli-1" {
		t.Fatalf("unexpected item %q", item.ID)
	}
	if len(repo.findCalls) != 1 || repo.findCalls[0] != "CLOTHING/Coat" {
		t.Fatalf("unexpected repository calls %v", repo.findCalls)
	}
}

func TestCatalogServiceGetPriceListItemValidation(t *testing.T) {
	svc := newCatalogFixture(t, &stubCatalogRepository{})

	if _, err := svc.GetPriceListItem(context.Background(), "", "Coat"); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.ListPriceListItems(context.Background(), "   "); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCatalogServiceNotFoundTranslation(t *testing.T) {
	repo := &stubCatalogRepository{items: map[string][]domain.PriceListItem{}}
	svc := newCatalogFixture(t, repo)

	_, err := svc.GetPriceListItem(context.Background(), "CLOTHING", "Cape")
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	repo.err = errors.New("firestore: unavailable")
	if _, err := svc.ListCategories(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestCatalogServiceGetModifiers(t *testing.T) {
	repo := &stubCatalogRepository{
		modifiers: []domain.PriceModifier{
			{Code: "HAND_FINISH", Kind: domain.ModifierFixedAmount, Amount: 500, Active: true},
			{Code: "CHILD_ITEM", Kind: domain.ModifierPercentage, ValueBps: -3000, Active: true},
		},
	}
	svc := newCatalogFixture(t, repo)

	modifiers, err := svc.GetModifiers(context.Background(), []string{"CHILD_ITEM", "HAND_FINISH"})
	if err != nil {
		t.Fatalf("GetModifiers: %v", err)
	}
	if len(modifiers) != 2 || modifiers[0].Code != "CHILD_ITEM" {
		t.Fatalf("unexpected modifiers %v", modifiers)
	}

	if got, err := svc.GetModifiers(context.Background(), nil); err != nil || len(got) != 0 {
		t.Fatalf("expected empty result for no codes, got %v, %v", got, err)
	}
	if _, err := svc.GetModifiers(context.Background(), []string{" "}); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.GetModifiers(context.Background(), []string{"MISSING"}); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogServiceUpsertPriceListItem(t *testing.T) {
	repo := &stubCatalogRepository{}
	svc := newCatalogFixture(t, repo)

	saved, err := svc.UpsertPriceListItem(context.Background(), PriceListItem{
		CategoryCode:  "CLOTHING",
		Name:          "Пальто",
		UnitOfMeasure: "pcs",
		BasePrice:     30000,
		Active:        true,
	})
	if err != nil {
		t.Fatalf("UpsertPriceListItem: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	if _, err := svc.UpsertPriceListItem(context.Background(), PriceListItem{CategoryCode: "CLOTHING", Name: "Пальто", UnitOfMeasure: "pcs"}); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input for zero base price, got %v", err)
	}
	if _, err := svc.UpsertPriceListItem(context.Background(), PriceListItem{Name: "Пальто", UnitOfMeasure: "pcs", BasePrice: 100}); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input for missing category, got %v", err)
	}
}

func TestCatalogServiceUpsertModifier(t *testing.T) {
	repo := &stubCatalogRepository{}
	svc := newCatalogFixture(t, repo)

	saved, err := svc.UpsertModifier(context.Background(), PriceModifier{
		Code:     "HAND_CLEANING",
		Name:     "Ручне чищення",
		Kind:     domain.ModifierPercentage,
		ValueBps: 2000,
		Active:   true,
	})
	if err != nil {
		t.Fatalf("UpsertModifier: %v", err)
	}
	if saved.Code != "HAND_CLEANING" {
		t.Fatalf("unexpected code %q", saved.Code)
	}

	if _, err := svc.UpsertModifier(context.Background(), PriceModifier{Code: "X", Name: "x", Kind: "WEIRD"}); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input for unknown kind, got %v", err)
	}
	if _, err := svc.UpsertModifier(context.Background(), PriceModifier{Code: "Y", Name: "y", Kind: domain.ModifierRangePercentage, MinBps: 500, MaxBps: 100}); !errors.Is(err, ErrCatalogInvalidInput) {
		t.Fatalf("expected invalid input for inverted range, got %v", err)
	}
}
