package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/services"
)

type stubOrderService struct {
	mu        sync.Mutex
	orders    map[string]services.Order
	byReceipt map[string]string
	completed []services.CompleteSessionCommand
	err       error
}

func newStubOrderService() *stubOrderService {
	return &stubOrderService{
		orders:    make(map[string]services.Order),
		byReceipt: make(map[string]string),
	}
}

func (s *stubOrderService) seed(order services.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	s.byReceipt[order.ReceiptNumber] = order.ID
}

func (s *stubOrderService) CompleteSession(ctx context.Context, cmd services.CompleteSessionCommand) (services.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return services.Order{}, s.err
	}
	if cmd.SessionID == "" {
		return services.Order{}, fmt.Errorf("%w: session id is required", services.ErrOrderInvalidInput)
	}
	if cmd.SessionID == "missing" {
		return services.Order{}, fmt.Errorf("%w: %s", services.ErrOrderSessionNotFound, cmd.SessionID)
	}
	s.completed = append(s.completed, cmd)
	order := services.Order{
		ID:            "order-1",
		ReceiptNumber: "AKSI-KYIV-20260201-101530-001",
		UniqueTag:     "tag-001",
		BranchID:      "br-1",
		ClientID:      "client-1",
		Status:        domain.OrderStatusAccepted,
		TotalAmount:   12100,
		DiscountCode:  cmd.DiscountCode,
		DiscountBps:   cmd.DiscountBps,
		Expedited:     cmd.Expedited,
		Items: []services.OrderItem{
			{ID: "item-1", CategoryCode: "CLOTHING", ItemName: "Пальто", Quantity: 1, TotalPrice: 12100},
		},
		CreatedAt: time.Date(2026, time.February, 1, 10, 15, 30, 0, time.UTC),
	}
	s.orders[order.ID] = order
	s.byReceipt[order.ReceiptNumber] = order.ID
	return order, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (services.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return services.Order{}, fmt.Errorf("%w: %s", services.ErrOrderNotFound, orderID)
	}
	return order, nil
}

func (s *stubOrderService) GetOrderByReceipt(ctx context.Context, receiptNumber string) (services.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byReceipt[receiptNumber]
	if !ok {
		return services.Order{}, fmt.Errorf("%w: receipt %s", services.ErrOrderNotFound, receiptNumber)
	}
	return s.orders[id], nil
}

func (s *stubOrderService) ListClientOrders(ctx context.Context, clientID string, pager services.Pagination) ([]services.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var result []services.Order
	for _, order := range s.orders {
		if order.ClientID == clientID {
			result = append(result, order)
		}
	}
	if pager.Limit > 0 && len(result) > pager.Limit {
		result = result[:pager.Limit]
	}
	return result, nil
}

func TestOrderHandlersCompleteSession(t *testing.T) {
	svc := newStubOrderService()
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(nil, svc).Routes))

	rec := postJSON(t, router, "/api/v1/orders/", completeSessionRequest{
		SessionID:   "sess-1",
		DiscountBps: 1000,
		Expedited:   true,
		CompleteBy:  "2026-02-03T18:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var response orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if response.Order.ReceiptNumber != "AKSI-KYIV-20260201-101530-001" {
		t.Fatalf("receipt = %q", response.Order.ReceiptNumber)
	}
	if len(response.Order.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(response.Order.Items))
	}

	if len(svc.completed) != 1 {
		t.Fatalf("completed calls = %d, want 1", len(svc.completed))
	}
	cmd := svc.completed[0]
	if cmd.SessionID != "sess-1" || cmd.DiscountBps != 1000 || !cmd.Expedited {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	want := time.Date(2026, time.February, 3, 18, 0, 0, 0, time.UTC)
	if !cmd.CompleteBy.Equal(want) {
		t.Fatalf("complete by = %v, want %v", cmd.CompleteBy, want)
	}
}

func TestOrderHandlersCompleteSessionErrors(t *testing.T) {
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(nil, newStubOrderService()).Routes))

	rec := postJSON(t, router, "/api/v1/orders/", completeSessionRequest{SessionID: "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = postJSON(t, router, "/api/v1/orders/", completeSessionRequest{SessionID: "sess-1", CompleteBy: "tomorrow"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad timestamp status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	svc := newStubOrderService()
	svc.err = services.ErrOrderDuplicateReceipt
	router = NewRouter(WithOrderRoutes(NewOrderHandlers(nil, svc).Routes))
	rec = postJSON(t, router, "/api/v1/orders/", completeSessionRequest{SessionID: "sess-1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate receipt status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestOrderHandlersLookups(t *testing.T) {
	svc := newStubOrderService()
	svc.seed(services.Order{
		ID:            "order-7",
		ReceiptNumber: "AKSI-LVIV-20260210-093000-007",
		ClientID:      "client-9",
		Status:        domain.OrderStatusReady,
		TotalAmount:   8000,
	})
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(nil, svc).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/order-7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/receipt/AKSI-LVIV-20260210-093000-007", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("receipt lookup status = %d: %s", rec.Code, rec.Body.String())
	}
	var response orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if response.Order.ID != "order-7" {
		t.Fatalf("order id = %q, want order-7", response.Order.ID)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown order status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestOrderHandlersListClientOrders(t *testing.T) {
	svc := newStubOrderService()
	svc.seed(services.Order{ID: "order-1", ReceiptNumber: "r-1", ClientID: "client-9", Status: domain.OrderStatusAccepted})
	svc.seed(services.Order{ID: "order-2", ReceiptNumber: "r-2", ClientID: "client-9", Status: domain.OrderStatusReady})
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(nil, svc).Routes))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/?client_id=client-9&pageSize=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var response orderListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(response.Items))
	}
	if response.NextPageToken == "" {
		t.Fatal("expected a next page token when the page is full")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing client_id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/?client_id=client-9&pageSize=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad page size status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
