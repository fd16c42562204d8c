package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
	"github.com/aksi-clean/api/internal/wizard"
)

var (
	// ErrOrderInvalidInput indicates a malformed completion or lookup request.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderSessionNotFound indicates the wizard session is unknown or expired.
	ErrOrderSessionNotFound = errors.New("order: wizard session not found")
	// ErrOrderSessionIncomplete indicates the wizard has not reached its final state.
	ErrOrderSessionIncomplete = errors.New("order: wizard session incomplete")
	// ErrOrderDuplicateReceipt indicates an order with the same receipt number already exists.
	ErrOrderDuplicateReceipt = errors.New("order: duplicate receipt number")
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderUnavailable indicates the order backend failed.
	ErrOrderUnavailable = errors.New("order: unavailable")
)

const orderBpsDenominator = 10_000

// DiscountEligibility answers whether an order-level discount may be applied
// to items of a given category. The pricing engine implements it.
type DiscountEligibility interface {
	IsDiscountApplicableToCategory(categoryCode string) bool
}

// OrderServiceDeps bundles dependencies for NewOrderService.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Sessions    wizard.SessionStore
	Discounts   DiscountEligibility
	ExpediteBps int64
	Clock       func() time.Time
	Logger      *zap.Logger
}

type orderService struct {
	orders      repositories.OrderRepository
	sessions    wizard.SessionStore
	discounts   DiscountEligibility
	expediteBps int64
	clock       func() time.Time
	logger      *zap.Logger
}

// NewOrderService wires an OrderService that turns completed wizard sessions
// into persisted orders.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service requires order repository")
	}
	if deps.Sessions == nil {
		return nil, errors.New("order service requires session store")
	}
	if deps.Discounts == nil {
		return nil, errors.New("order service requires discount eligibility")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{
		orders:      deps.Orders,
		sessions:    deps.Sessions,
		discounts:   deps.Discounts,
		expediteBps: deps.ExpediteBps,
		clock:       clock,
		logger:      logger,
	}, nil
}

var _ OrderService = (*orderService)(nil)

func (s *orderService) CompleteSession(ctx context.Context, cmd CompleteSessionCommand) (Order, error) {
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return Order{}, fmt.Errorf("%w: session id is required", ErrOrderInvalidInput)
	}
	if cmd.DiscountBps < 0 || cmd.DiscountBps >= orderBpsDenominator {
		return Order{}, fmt.Errorf("%w: discount %d bps out of range", ErrOrderInvalidInput, cmd.DiscountBps)
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return Order{}, fmt.Errorf("%w: %s", ErrOrderSessionNotFound, sessionID)
		}
		return Order{}, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}
	if sess.State != wizard.StateCompleted {
		return Order{}, fmt.Errorf("%w: session %s is in state %s", ErrOrderSessionIncomplete, sessionID, sess.State)
	}
	if len(sess.Items) == 0 {
		return Order{}, fmt.Errorf("%w: session %s has no items", ErrOrderSessionIncomplete, sessionID)
	}

	receipt := extendedString(sess, wizard.KeyReceiptNumber)
	tag := extendedString(sess, wizard.KeyUniqueTag)
	branchID := extendedString(sess, wizard.KeyBranchID)
	clientID := extendedString(sess, wizard.KeySelectedClientID)
	if receipt == "" || tag == "" || branchID == "" || clientID == "" {
		return Order{}, fmt.Errorf("%w: session %s is missing order identifiers", ErrOrderSessionIncomplete, sessionID)
	}

	now := s.clock().UTC()
	order := Order{
		ID:            ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ReceiptNumber: receipt,
		UniqueTag:     tag,
		BranchID:      branchID,
		ClientID:      clientID,
		DiscountCode:  strings.TrimSpace(cmd.DiscountCode),
		DiscountBps:   cmd.DiscountBps,
		Expedited:     cmd.Expedited,
		Status:        domain.OrderStatusAccepted,
		Notes:         strings.TrimSpace(cmd.Notes),
		CreatedAt:     now,
		CompleteBy:    cmd.CompleteBy,
	}
	if cmd.Expedited {
		order.ExpediteBps = s.expediteBps
	}

	var total int64
	for i, draft := range sess.Items {
		item, err := orderItemFromDraft(draft)
		if err != nil {
			return Order{}, fmt.Errorf("%w: item %d: %v", ErrOrderSessionIncomplete, i, err)
		}
		itemTotal := item.TotalPrice
		if cmd.DiscountBps > 0 && s.discounts.IsDiscountApplicableToCategory(item.CategoryCode) {
			itemTotal -= roundHalfUpBps(item.TotalPrice, cmd.DiscountBps)
		}
		total += itemTotal
		order.Items = append(order.Items, item)
	}
	order.TotalAmount = total

	persisted, err := s.orders.Create(ctx, order)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return Order{}, fmt.Errorf("%w: %s", ErrOrderDuplicateReceipt, receipt)
		}
		return Order{}, fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
	}

	if err := s.sessions.Expire(ctx, sessionID); err != nil && !errors.Is(err, wizard.ErrSessionNotFound) {
		s.logger.Warn("expire wizard session after order creation",
			zap.String("sessionId", sessionID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("orderId", persisted.ID),
		zap.String("receiptNumber", persisted.ReceiptNumber),
		zap.Int64("totalAmount", persisted.TotalAmount),
		zap.Int("items", len(persisted.Items)))
	return persisted, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, translateOrderError(err)
	}
	return order, nil
}

func (s *orderService) GetOrderByReceipt(ctx context.Context, receiptNumber string) (Order, error) {
	receiptNumber = strings.TrimSpace(receiptNumber)
	if receiptNumber == "" {
		return Order{}, fmt.Errorf("%w: receipt number is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		return Order{}, translateOrderError(err)
	}
	return order, nil
}

func (s *orderService) ListClientOrders(ctx context.Context, clientID string, pager Pagination) ([]Order, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByClient(ctx, clientID, pager)
	if err != nil {
		return nil, translateOrderError(err)
	}
	return orders, nil
}

func orderItemFromDraft(draft wizard.ItemDraft) (OrderItem, error) {
	if draft.Pricing == nil {
		return OrderItem{}, errors.New("draft has no price calculation")
	}
	item := OrderItem{
		ID:            ulid.Make().String(),
		CategoryCode:  draft.CategoryCode,
		ItemName:      draft.ItemName,
		Quantity:      draft.Quantity,
		UnitOfMeasure: draft.UnitOfMeasure,
		Color:         draft.Color,
		Material:      draft.Material,
		Stains:        append([]string(nil), draft.Stains...),
		Defects:       append([]string(nil), draft.Defects...),
		PhotoPaths:    append([]string(nil), draft.PhotoKeys...),
		BaseUnitPrice: draft.Pricing.BaseUnitPrice,
		UnitPrice:     draft.Pricing.FinalUnitPrice,
		TotalPrice:    draft.Pricing.FinalTotalPrice,
		ModifierCodes: append([]string(nil), draft.Pricing.AppliedCodes...),
		Details:       append([]domain.CalculationDetail(nil), draft.Pricing.Details...),
	}
	if draft.WearLevel > 0 {
		item.WearLevel = strconv.Itoa(draft.WearLevel) + "%"
	}
	if notes := strings.TrimSpace(draft.RiskNotes); notes != "" {
		item.Risks = []string{notes}
	}
	return item, nil
}

func extendedString(sess wizard.Session, key string) string {
	value, ok := sess.Extended[key]
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return strings.TrimSpace(str)
}

// roundHalfUpBps returns amount*bps/10000 rounded half up.
func roundHalfUpBps(amount, bps int64) int64 {
	return (amount*bps + orderBpsDenominator/2) / orderBpsDenominator
}

func translateOrderError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
}
