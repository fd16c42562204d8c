package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/services"
)

type stubCatalogService struct {
	categories []services.ServiceCategory
	items      map[string][]services.PriceListItem
	modifiers  []services.PriceModifier
	err        error
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]services.ServiceCategory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *stubCatalogService) ListPriceListItems(ctx context.Context, categoryCode string) ([]services.PriceListItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	entries, ok := s.items[categoryCode]
	if !ok {
		return nil, fmt.Errorf("%w: category %s", services.ErrCatalogNotFound, categoryCode)
	}
	return entries, nil
}

func (s *stubCatalogService) GetPriceListItem(ctx context.Context, categoryCode, itemName string) (services.PriceListItem, error) {
	if s.err != nil {
		return services.PriceListItem{}, s.err
	}
	for _, entry := range s.items[categoryCode] {
		if strings.EqualFold(entry.Name, itemName) {
			return entry, nil
		}
	}
	return services.PriceListItem{}, fmt.Errorf("%w: %s/%s", services.ErrCatalogNotFound, categoryCode, itemName)
}

func (s *stubCatalogService) ListModifiers(ctx context.Context) ([]services.PriceModifier, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.modifiers, nil
}

func (s *stubCatalogService) GetModifiers(ctx context.Context, codes []string) ([]services.PriceModifier, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []services.PriceModifier
	for _, code := range codes {
		for _, modifier := range s.modifiers {
			if modifier.Code == strings.TrimSpace(code) {
				result = append(result, modifier)
			}
		}
	}
	return result, nil
}

func (s *stubCatalogService) UpsertPriceListItem(ctx context.Context, item services.PriceListItem) (services.PriceListItem, error) {
	if s.err != nil {
		return services.PriceListItem{}, s.err
	}
	if item.ID == "" {
		item.ID = "pl-new"
	}
	if s.items == nil {
		s.items = make(map[string][]services.PriceListItem)
	}
	s.items[item.CategoryCode] = append(s.items[item.CategoryCode], item)
	return item, nil
}

func (s *stubCatalogService) UpsertModifier(ctx context.Context, modifier services.PriceModifier) (services.PriceModifier, error) {
	if s.err != nil {
		return services.PriceModifier{}, s.err
	}
	s.modifiers = append(s.modifiers, modifier)
	return modifier, nil
}

func newStubCatalogService() *stubCatalogService {
	black := int64(45000)
	return &stubCatalogService{
		categories: []services.ServiceCategory{
			{Code: "CLOTHING", Name: "Чищення одягу", Active: true, SortOrder: 1},
			{Code: "LAUNDRY", Name: "Прання", Active: true, SortOrder: 2},
		},
		items: map[string][]services.PriceListItem{
			"CLOTHING": {
				{ID: "pl-1", CategoryCode: "CLOTHING", Name: "Пальто", UnitOfMeasure: "pcs", BasePrice: 30000, PriceBlack: &black, Active: true},
			},
		},
		modifiers: []services.PriceModifier{
			{Code: "HAND_CLEANING", Name: "Ручне чищення", Kind: "PERCENTAGE", ValueBps: 2000, Active: true},
			{Code: "BUTTON_REPLACE", Name: "Заміна ґудзика", Kind: "FIXED_AMOUNT", Amount: 500, Active: true},
		},
	}
}

func TestCatalogHandlersListCategories(t *testing.T) {
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, newStubCatalogService(), newTestPricingEngine(t), 5000).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var response categoryListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(response.Items) != 2 {
		t.Fatalf("categories = %d, want 2", len(response.Items))
	}
	if response.Items[0].Code != "CLOTHING" {
		t.Fatalf("first category = %q", response.Items[0].Code)
	}
}

func TestCatalogHandlersGetItem(t *testing.T) {
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, newStubCatalogService(), newTestPricingEngine(t), 5000).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories/CLOTHING/items/Пальто", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var item priceListItemPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.BasePrice != 30000 {
		t.Fatalf("base price = %d, want 30000", item.BasePrice)
	}
	if item.PriceBlack == nil || *item.PriceBlack != 45000 {
		t.Fatalf("price black = %v, want 45000", item.PriceBlack)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories/CLOTHING/items/Nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCatalogHandlersListModifiersByCodes(t *testing.T) {
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, newStubCatalogService(), newTestPricingEngine(t), 5000).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/modifiers?codes=BUTTON_REPLACE", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var response modifierListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode modifiers: %v", err)
	}
	if len(response.Items) != 1 || response.Items[0].Code != "BUTTON_REPLACE" {
		t.Fatalf("modifiers = %+v, want single BUTTON_REPLACE", response.Items)
	}
	if response.Items[0].Amount != 500 {
		t.Fatalf("amount = %d, want 500", response.Items[0].Amount)
	}
}

func TestCatalogHandlersServiceFailure(t *testing.T) {
	svc := newStubCatalogService()
	svc.err = services.ErrCatalogUnavailable
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, svc, newTestPricingEngine(t), 5000).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/categories", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func newTestPricingEngine(t *testing.T) *services.PricingEngine {
	t.Helper()
	engine, err := services.NewPricingEngine(services.PricingEngineDeps{})
	if err != nil {
		t.Fatalf("NewPricingEngine: %v", err)
	}
	return engine
}

func TestCatalogHandlersCalculatePrice(t *testing.T) {
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, newStubCatalogService(), newTestPricingEngine(t), 5000).Routes))

	rec := postJSON(t, router, "/api/v1/catalog/price:calculate", priceCalculationRequest{
		CategoryCode:  "CLOTHING",
		ItemName:      "Пальто",
		Color:         "black",
		Quantity:      2,
		ModifierCodes: []string{"HAND_CLEANING"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("calculate status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp priceCalculationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode calculation: %v", err)
	}
	if resp.BaseUnitPrice != 45000 {
		t.Fatalf("base unit price = %d, want 45000", resp.BaseUnitPrice)
	}
	if resp.FinalUnitPrice != 54000 {
		t.Fatalf("final unit price = %d, want 54000", resp.FinalUnitPrice)
	}
	if resp.FinalTotalPrice != 108000 {
		t.Fatalf("final total = %d, want 108000", resp.FinalTotalPrice)
	}
	if len(resp.Details) == 0 {
		t.Fatal("expected detail lines")
	}
}

func TestCatalogHandlersCalculatePriceUnknownItem(t *testing.T) {
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, newStubCatalogService(), newTestPricingEngine(t), 5000).Routes))

	rec := postJSON(t, router, "/api/v1/catalog/price:calculate", priceCalculationRequest{
		CategoryCode: "CLOTHING",
		ItemName:     "Смокінг",
		Quantity:     1,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}
}

func putJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestCatalogHandlersUpsertItem(t *testing.T) {
	svc := newStubCatalogService()
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, svc, newTestPricingEngine(t), 5000).Routes))

	rec := putJSON(t, router, "/api/v1/catalog/items", upsertPriceListItemRequest{
		CategoryCode:  "LAUNDRY",
		Name:          "Сорочка",
		UnitOfMeasure: "pcs",
		BasePrice:     12000,
		Active:        true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d: %s", rec.Code, rec.Body.String())
	}

	var payload priceListItemPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if payload.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if payload.CategoryCode != "LAUNDRY" {
		t.Fatalf("category = %q", payload.CategoryCode)
	}
}

func TestCatalogHandlersUpsertModifier(t *testing.T) {
	svc := newStubCatalogService()
	router := NewRouter(WithCatalogRoutes(NewCatalogHandlers(nil, svc, newTestPricingEngine(t), 5000).Routes))

	rec := putJSON(t, router, "/api/v1/catalog/modifiers/URGENT_REPAIR", upsertModifierRequest{
		Name:   "Терміновий ремонт",
		Kind:   "FIXED_AMOUNT",
		Amount: 1500,
		Active: true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d: %s", rec.Code, rec.Body.String())
	}

	var payload modifierPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode modifier: %v", err)
	}
	if payload.Code != "URGENT_REPAIR" {
		t.Fatalf("code = %q", payload.Code)
	}
}
