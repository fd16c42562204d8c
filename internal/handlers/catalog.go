package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/services"
)

const maxCatalogBodySize = 16 * 1024

// CatalogHandlers serves price list reference data to operator terminals and
// fronts the pricing engine for ad hoc quotes.
type CatalogHandlers struct {
	authn       *auth.Authenticator
	catalog     services.CatalogService
	pricing     *services.PricingEngine
	expediteBps int64
}

// NewCatalogHandlers constructs a new CatalogHandlers instance.
func NewCatalogHandlers(authn *auth.Authenticator, catalog services.CatalogService, pricing *services.PricingEngine, expediteBps int64) *CatalogHandlers {
	return &CatalogHandlers{
		authn:       authn,
		catalog:     catalog,
		pricing:     pricing,
		expediteBps: expediteBps,
	}
}

// Routes registers the /catalog endpoints. Price list writes are limited to
// managers and admins; reads and quotes are open to any signed-in operator.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Group(func(read chi.Router) {
		if h.authn != nil {
			read.Use(h.authn.RequireAuth())
		}
		read.Get("/categories", h.listCategories)
		read.Get("/categories/{categoryCode}/items", h.listItems)
		read.Get("/categories/{categoryCode}/items/{itemName}", h.getItem)
		read.Get("/modifiers", h.listModifiers)
		read.Post("/price:calculate", h.calculatePrice)
	})
	r.Group(func(admin chi.Router) {
		if h.authn != nil {
			admin.Use(h.authn.RequireAuth(auth.RoleManager, auth.RoleAdmin))
		}
		admin.Put("/items", h.upsertItem)
		admin.Put("/modifiers/{code}", h.upsertModifier)
	})
}

type categoryPayload struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	SortOrder int    `json:"sort_order"`
}

type priceListItemPayload struct {
	ID            string `json:"id"`
	CategoryCode  string `json:"category_code"`
	ItemCode      string `json:"item_code,omitempty"`
	Name          string `json:"name"`
	UnitOfMeasure string `json:"unit_of_measure"`
	BasePrice     int64  `json:"base_price"`
	PriceBlack    *int64 `json:"price_black,omitempty"`
	PriceColor    *int64 `json:"price_color,omitempty"`
	Active        bool   `json:"active"`
}

type modifierPayload struct {
	Code                 string   `json:"code"`
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	Kind                 string   `json:"kind"`
	ValueBps             int64    `json:"value_bps,omitempty"`
	Amount               int64    `json:"amount,omitempty"`
	MinBps               int64    `json:"min_bps,omitempty"`
	MaxBps               int64    `json:"max_bps,omitempty"`
	CategoryRestrictions []string `json:"category_restrictions,omitempty"`
	Active               bool     `json:"active"`
}

type categoryListResponse struct {
	Items []categoryPayload `json:"items"`
}

type priceListItemListResponse struct {
	Items []priceListItemPayload `json:"items"`
}

type modifierListResponse struct {
	Items []modifierPayload `json:"items"`
}

func (h *CatalogHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]categoryPayload, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryPayload{
			Code:      category.Code,
			Name:      category.Name,
			Active:    category.Active,
			SortOrder: category.SortOrder,
		})
	}
	writeJSONResponse(w, http.StatusOK, categoryListResponse{Items: items})
}

func (h *CatalogHandlers) listItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	categoryCode := strings.TrimSpace(chi.URLParam(r, "categoryCode"))
	entries, err := h.catalog.ListPriceListItems(ctx, categoryCode)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]priceListItemPayload, 0, len(entries))
	for _, entry := range entries {
		items = append(items, buildPriceListItemPayload(entry))
	}
	writeJSONResponse(w, http.StatusOK, priceListItemListResponse{Items: items})
}

func (h *CatalogHandlers) getItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	categoryCode := strings.TrimSpace(chi.URLParam(r, "categoryCode"))
	itemName := strings.TrimSpace(chi.URLParam(r, "itemName"))
	entry, err := h.catalog.GetPriceListItem(ctx, categoryCode, itemName)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPriceListItemPayload(entry))
}

func (h *CatalogHandlers) listModifiers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	var (
		modifiers []services.PriceModifier
		err       error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("codes")); raw != "" {
		codes := strings.Split(raw, ",")
		modifiers, err = h.catalog.GetModifiers(ctx, codes)
	} else {
		modifiers, err = h.catalog.ListModifiers(ctx)
	}
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	items := make([]modifierPayload, 0, len(modifiers))
	for _, modifier := range modifiers {
		items = append(items, modifierPayload{
			Code:                 modifier.Code,
			Name:                 modifier.Name,
			Description:          modifier.Description,
			Kind:                 string(modifier.Kind),
			ValueBps:             modifier.ValueBps,
			Amount:               modifier.Amount,
			MinBps:               modifier.MinBps,
			MaxBps:               modifier.MaxBps,
			CategoryRestrictions: modifier.CategoryRestrictions,
			Active:               modifier.Active,
		})
	}
	writeJSONResponse(w, http.StatusOK, modifierListResponse{Items: items})
}

func buildPriceListItemPayload(entry services.PriceListItem) priceListItemPayload {
	return priceListItemPayload{
		ID:            entry.ID,
		CategoryCode:  entry.CategoryCode,
		ItemCode:      entry.ItemCode,
		Name:          entry.Name,
		UnitOfMeasure: entry.UnitOfMeasure,
		BasePrice:     entry.BasePrice,
		PriceBlack:    entry.PriceBlack,
		PriceColor:    entry.PriceColor,
		Active:        entry.Active,
	}
}

type upsertPriceListItemRequest struct {
	ID            string `json:"id,omitempty"`
	CategoryCode  string `json:"category_code"`
	ItemCode      string `json:"item_code,omitempty"`
	Name          string `json:"name"`
	UnitOfMeasure string `json:"unit_of_measure"`
	BasePrice     int64  `json:"base_price"`
	PriceBlack    *int64 `json:"price_black,omitempty"`
	PriceColor    *int64 `json:"price_color,omitempty"`
	Active        bool   `json:"active"`
	SortOrder     int    `json:"sort_order"`
}

type upsertModifierRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description,omitempty"`
	Kind                 string   `json:"kind"`
	ValueBps             int64    `json:"value_bps,omitempty"`
	Amount               int64    `json:"amount,omitempty"`
	MinBps               int64    `json:"min_bps,omitempty"`
	MaxBps               int64    `json:"max_bps,omitempty"`
	CategoryRestrictions []string `json:"category_restrictions,omitempty"`
	Active               bool     `json:"active"`
	SortOrder            int      `json:"sort_order"`
}

func (h *CatalogHandlers) upsertItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req upsertPriceListItemRequest
	if err := decodeJSONBody(r, maxCatalogBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	saved, err := h.catalog.UpsertPriceListItem(ctx, services.PriceListItem{
		ID:            req.ID,
		CategoryCode:  req.CategoryCode,
		ItemCode:      req.ItemCode,
		Name:          req.Name,
		UnitOfMeasure: req.UnitOfMeasure,
		BasePrice:     req.BasePrice,
		PriceBlack:    req.PriceBlack,
		PriceColor:    req.PriceColor,
		Active:        req.Active,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildPriceListItemPayload(saved))
}

func (h *CatalogHandlers) upsertModifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req upsertModifierRequest
	if err := decodeJSONBody(r, maxCatalogBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	saved, err := h.catalog.UpsertModifier(ctx, services.PriceModifier{
		Code:                 chi.URLParam(r, "code"),
		Name:                 req.Name,
		Description:          req.Description,
		Kind:                 domain.ModifierKind(req.Kind),
		ValueBps:             req.ValueBps,
		Amount:               req.Amount,
		MinBps:               req.MinBps,
		MaxBps:               req.MaxBps,
		CategoryRestrictions: req.CategoryRestrictions,
		Active:               req.Active,
		SortOrder:            req.SortOrder,
	})
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, modifierPayload{
		Code:                 saved.Code,
		Name:                 saved.Name,
		Description:          saved.Description,
		Kind:                 string(saved.Kind),
		ValueBps:             saved.ValueBps,
		Amount:               saved.Amount,
		MinBps:               saved.MinBps,
		MaxBps:               saved.MaxBps,
		CategoryRestrictions: saved.CategoryRestrictions,
		Active:               saved.Active,
	})
}

type priceCalculationRequest struct {
	CategoryCode    string           `json:"category_code"`
	ItemName        string           `json:"item_name"`
	Color           string           `json:"color"`
	Quantity        int64            `json:"quantity"`
	ModifierCodes   []string         `json:"modifier_codes,omitempty"`
	RangeSelections map[string]int64 `json:"range_selections,omitempty"`
	FixedCounts     map[string]int64 `json:"fixed_counts,omitempty"`
	Expedited       bool             `json:"expedited"`
	DiscountCode    string           `json:"discount_code,omitempty"`
	DiscountBps     int64            `json:"discount_bps,omitempty"`
}

type calculationDetailPayload struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Effect      string `json:"effect"`
	PriceBefore int64  `json:"price_before"`
	PriceAfter  int64  `json:"price_after"`
	Delta       int64  `json:"delta"`
}

type priceCalculationResponse struct {
	BaseUnitPrice   int64                      `json:"base_unit_price"`
	FinalUnitPrice  int64                      `json:"final_unit_price"`
	BaseTotalPrice  int64                      `json:"base_total_price"`
	FinalTotalPrice int64                      `json:"final_total_price"`
	Quantity        int64                      `json:"quantity"`
	AppliedCodes    []string                   `json:"applied_codes,omitempty"`
	Details         []calculationDetailPayload `json:"details,omitempty"`
	DiscountApplied bool                       `json:"discount_applied"`
}

func (h *CatalogHandlers) calculatePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil || h.pricing == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "pricing unavailable", http.StatusServiceUnavailable))
		return
	}

	var req priceCalculationRequest
	if err := decodeJSONBody(r, maxCatalogBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	entry, err := h.catalog.GetPriceListItem(ctx, req.CategoryCode, req.ItemName)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	var modifiers []services.PriceModifier
	if len(req.ModifierCodes) > 0 {
		modifiers, err = h.catalog.GetModifiers(ctx, req.ModifierCodes)
		if err != nil {
			writeCatalogError(ctx, w, err)
			return
		}
	}

	result, err := h.pricing.Calculate(ctx, domain.PriceCalculationParams{
		CategoryCode:    entry.CategoryCode,
		ItemName:        entry.Name,
		UnitOfMeasure:   entry.UnitOfMeasure,
		BasePrice:       entry.BasePrice,
		PriceBlack:      entry.PriceBlack,
		PriceColor:      entry.PriceColor,
		Color:           req.Color,
		Quantity:        req.Quantity,
		Modifiers:       modifiers,
		RangeSelections: req.RangeSelections,
		FixedCounts:     req.FixedCounts,
		Expedited:       req.Expedited,
		ExpediteBps:     h.expediteBps,
		DiscountCode:    req.DiscountCode,
		DiscountBps:     req.DiscountBps,
	})
	if err != nil {
		if errors.Is(err, services.ErrPricingInvalidInput) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "failed to calculate price", http.StatusServiceUnavailable))
		return
	}

	details := make([]calculationDetailPayload, 0, len(result.Details))
	for _, detail := range result.Details {
		details = append(details, calculationDetailPayload{
			Code:        detail.Code,
			Name:        detail.Name,
			Effect:      detail.Effect,
			PriceBefore: detail.PriceBefore,
			PriceAfter:  detail.PriceAfter,
			Delta:       detail.Delta,
		})
	}
	writeJSONResponse(w, http.StatusOK, priceCalculationResponse{
		BaseUnitPrice:   result.BaseUnitPrice,
		FinalUnitPrice:  result.FinalUnitPrice,
		BaseTotalPrice:  result.BaseTotalPrice,
		FinalTotalPrice: result.FinalTotalPrice,
		Quantity:        result.Quantity,
		AppliedCodes:    result.AppliedCodes,
		Details:         details,
		DiscountApplied: result.DiscountApplied,
	})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_not_found", "price list entry not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "failed to load catalog data", http.StatusServiceUnavailable))
	}
}
