package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/httpx"
	"github.com/aksi-clean/api/internal/platform/pagination"
	"github.com/aksi-clean/api/internal/services"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
	maxOrderBodySize     = 16 * 1024
)

// OrderHandlers exposes order completion and lookup endpoints for operators.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listOrders)
	r.Post("/", h.completeSession)
	r.Get("/{orderID}", h.getOrder)
	r.Get("/receipt/{receiptNumber}", h.getOrderByReceipt)
}

type completeSessionRequest struct {
	SessionID    string `json:"session_id"`
	DiscountCode string `json:"discount_code"`
	DiscountBps  int64  `json:"discount_bps"`
	Expedited    bool   `json:"expedited"`
	Notes        string `json:"notes"`
	CompleteBy   string `json:"complete_by"`
}

type orderListResponse struct {
	Items         []orderSummaryPayload `json:"items"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}

type orderSummaryPayload struct {
	ID            string `json:"id"`
	ReceiptNumber string `json:"receipt_number"`
	UniqueTag     string `json:"unique_tag"`
	BranchID      string `json:"branch_id"`
	ClientID      string `json:"client_id"`
	Status        string `json:"status"`
	TotalAmount   int64  `json:"total_amount"`
	ItemCount     int    `json:"item_count"`
	CreatedAt     string `json:"created_at"`
}

type orderResponse struct {
	Order orderPayload `json:"order"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	UniqueTag     string             `json:"unique_tag"`
	BranchID      string             `json:"branch_id"`
	ClientID      string             `json:"client_id"`
	Status        string             `json:"status"`
	Items         []orderItemPayload `json:"items"`
	TotalAmount   int64              `json:"total_amount"`
	DiscountCode  string             `json:"discount_code,omitempty"`
	DiscountBps   int64              `json:"discount_bps,omitempty"`
	Expedited     bool               `json:"expedited,omitempty"`
	ExpediteBps   int64              `json:"expedite_bps,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     string             `json:"created_at"`
	CompleteBy    string             `json:"complete_by,omitempty"`
}

type orderItemPayload struct {
	ID            string               `json:"id"`
	CategoryCode  string               `json:"category_code"`
	ItemName      string               `json:"item_name"`
	Quantity      int64                `json:"quantity"`
	UnitOfMeasure string               `json:"unit_of_measure,omitempty"`
	Color         string               `json:"color,omitempty"`
	Material      string               `json:"material,omitempty"`
	WearLevel     string               `json:"wear_level,omitempty"`
	Stains        []string             `json:"stains,omitempty"`
	Defects       []string             `json:"defects,omitempty"`
	Risks         []string             `json:"risks,omitempty"`
	PhotoPaths    []string             `json:"photo_paths,omitempty"`
	BaseUnitPrice int64                `json:"base_unit_price"`
	UnitPrice     int64                `json:"unit_price"`
	TotalPrice    int64                `json:"total_price"`
	ModifierCodes []string             `json:"modifier_codes,omitempty"`
	Details       []priceDetailPayload `json:"details,omitempty"`
}

type priceDetailPayload struct {
	Code        string `json:"code"`
	Name        string `json:"name,omitempty"`
	Effect      string `json:"effect"`
	PriceBefore int64  `json:"price_before"`
	PriceAfter  int64  `json:"price_after"`
}

func (h *OrderHandlers) completeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	var req completeSessionRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cmd := services.CompleteSessionCommand{
		SessionID:    strings.TrimSpace(req.SessionID),
		DiscountCode: strings.TrimSpace(req.DiscountCode),
		DiscountBps:  req.DiscountBps,
		Expedited:    req.Expedited,
		Notes:        strings.TrimSpace(req.Notes),
	}
	if raw := strings.TrimSpace(req.CompleteBy); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "complete_by must be a valid RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		cmd.CompleteBy = ts.UTC()
	}

	order, err := h.orders.CompleteSession(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) getOrderByReceipt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	receipt := strings.TrimSpace(chi.URLParam(r, "receiptNumber"))
	order, err := h.orders.GetOrderByReceipt(ctx, receipt)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, orderResponse{Order: buildOrderPayload(order)})
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	query := r.URL.Query()
	clientID := strings.TrimSpace(query.Get("client_id"))
	if clientID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "client_id is required", http.StatusBadRequest))
		return
	}

	params, err := pagination.Parse(query, pagination.Options{
		DefaultPageSize: defaultOrderPageSize,
		MaxPageSize:     maxOrderPageSize,
	})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	orders, err := h.orders.ListClientOrders(ctx, clientID, services.Pagination{
		Limit:  params.PageSize,
		Cursor: cursorValue(params.Cursor),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	items := make([]orderSummaryPayload, 0, len(orders))
	for _, order := range orders {
		items = append(items, orderSummaryPayload{
			ID:            order.ID,
			ReceiptNumber: order.ReceiptNumber,
			UniqueTag:     order.UniqueTag,
			BranchID:      order.BranchID,
			ClientID:      order.ClientID,
			Status:        string(order.Status),
			TotalAmount:   order.TotalAmount,
			ItemCount:     len(order.Items),
			CreatedAt:     formatTime(order.CreatedAt),
		})
	}

	response := orderListResponse{Items: items}
	if len(orders) == params.PageSize {
		last := orders[len(orders)-1]
		token, err := pagination.EncodeToken(pagination.Cursor{
			StartAfter: []any{formatTime(last.CreatedAt)},
		})
		if err == nil {
			response.NextPageToken = token
		}
	}
	writeJSONResponse(w, http.StatusOK, response)
}

// cursorValue extracts the single createdAt sort key carried by order list
// page tokens.
func cursorValue(cursor pagination.Cursor) string {
	if len(cursor.StartAfter) == 0 {
		return ""
	}
	if value, ok := cursor.StartAfter[0].(string); ok {
		return value
	}
	return ""
}

func buildOrderPayload(order services.Order) orderPayload {
	payload := orderPayload{
		ID:            order.ID,
		ReceiptNumber: order.ReceiptNumber,
		UniqueTag:     order.UniqueTag,
		BranchID:      order.BranchID,
		ClientID:      order.ClientID,
		Status:        string(order.Status),
		Items:         make([]orderItemPayload, 0, len(order.Items)),
		TotalAmount:   order.TotalAmount,
		DiscountCode:  order.DiscountCode,
		DiscountBps:   order.DiscountBps,
		Expedited:     order.Expedited,
		ExpediteBps:   order.ExpediteBps,
		Notes:         order.Notes,
		CreatedAt:     formatTime(order.CreatedAt),
		CompleteBy:    formatTime(order.CompleteBy),
	}

	for _, item := range order.Items {
		entry := orderItemPayload{
			ID:            item.ID,
			CategoryCode:  item.CategoryCode,
			ItemName:      item.ItemName,
			Quantity:      item.Quantity,
			UnitOfMeasure: item.UnitOfMeasure,
			Color:         item.Color,
			Material:      item.Material,
			WearLevel:     item.WearLevel,
			Stains:        item.Stains,
			Defects:       item.Defects,
			Risks:         item.Risks,
			PhotoPaths:    item.PhotoPaths,
			BaseUnitPrice: item.BaseUnitPrice,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			ModifierCodes: item.ModifierCodes,
		}
		for _, detail := range item.Details {
			entry.Details = append(entry.Details, priceDetailPayload{
				Code:        detail.Code,
				Name:        detail.Name,
				Effect:      detail.Effect,
				PriceBefore: detail.PriceBefore,
				PriceAfter:  detail.PriceAfter,
			})
		}
		payload.Items = append(payload.Items, entry)
	}

	return payload
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderSessionNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("session_not_found", "wizard session not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderSessionIncomplete):
		httpx.WriteError(ctx, w, httpx.NewError("session_incomplete", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderDuplicateReceipt):
		httpx.WriteError(ctx, w, httpx.NewError("duplicate_receipt", "receipt number already used", http.StatusConflict))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "failed to process order request", http.StatusInternalServerError))
	}
}
