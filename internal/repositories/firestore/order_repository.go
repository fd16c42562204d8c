package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/aksi-clean/api/internal/domain"
	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/repositories"
)

const ordersCollection = "orders"

type orderDocument struct {
	ReceiptNumber string              `firestore:"receiptNumber"`
	UniqueTag     string              `firestore:"uniqueTag"`
	BranchID      string              `firestore:"branchId"`
	ClientID      string              `firestore:"clientId"`
	Items         []orderItemDocument `firestore:"items"`
	TotalAmount   int64               `firestore:"totalAmount"`
	DiscountCode  string              `firestore:"discountCode,omitempty"`
	DiscountBps   int64               `firestore:"discountBps,omitempty"`
	Expedited     bool                `firestore:"expedited"`
	ExpediteBps   int64               `firestore:"expediteBps,omitempty"`
	Status        string              `firestore:"status"`
	Notes         string              `firestore:"notes,omitempty"`
	CreatedAt     time.Time           `firestore:"createdAt"`
	CompleteBy    time.Time           `firestore:"completeBy,omitempty"`
}

type orderItemDocument struct {
	ID            string           `firestore:"id"`
	CategoryCode  string           `firestore:"categoryCode"`
	ItemName      string           `firestore:"itemName"`
	Quantity      int64            `firestore:"quantity"`
	UnitOfMeasure string           `firestore:"unitOfMeasure"`
	Color         string           `firestore:"color,omitempty"`
	Material      string           `firestore:"material,omitempty"`
	WearLevel     string           `firestore:"wearLevel,omitempty"`
	Stains        []string         `firestore:"stains,omitempty"`
	Defects       []string         `firestore:"defects,omitempty"`
	Risks         []string         `firestore:"risks,omitempty"`
	PhotoPaths    []string         `firestore:"photoPaths,omitempty"`
	BaseUnitPrice int64            `firestore:"baseUnitPrice"`
	UnitPrice     int64            `firestore:"unitPrice"`
	TotalPrice    int64            `firestore:"totalPrice"`
	ModifierCodes []string         `firestore:"modifierCodes,omitempty"`
	Details       []detailDocument `firestore:"details,omitempty"`
}

type detailDocument struct {
	Code        string `firestore:"code"`
	Name        string `firestore:"name"`
	Effect      string `firestore:"effect"`
	PriceBefore int64  `firestore:"priceBefore"`
	PriceAfter  int64  `firestore:"priceAfter"`
	Delta       int64  `firestore:"delta"`
}

// OrderRepository persists completed orders in Firestore. Documents are keyed
// by receipt number, which makes creation idempotent per receipt.
type OrderRepository struct {
	base *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		base: pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil),
	}, nil
}

// Create stores a completed order. The receipt number doubles as document id.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	receipt := strings.TrimSpace(order.ReceiptNumber)
	if receipt == "" {
		return domain.Order{}, errors.New("order repository: receipt number is required")
	}
	if _, err := r.base.Get(ctx, receipt); err == nil {
		return domain.Order{}, fmt.Errorf("%w: %s", repositories.ErrAlreadyExists, receipt)
	} else {
		var ferr *pfirestore.Error
		if !errors.As(err, &ferr) || !ferr.IsNotFound() {
			return domain.Order{}, err
		}
	}

	doc := fromDomainOrder(order)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.base.Set(ctx, receipt, doc); err != nil {
		return domain.Order{}, err
	}
	saved := toDomainOrder(receipt, doc)
	return saved, nil
}

// FindByID loads one order by document id.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		var ferr *pfirestore.Error
		if errors.As(err, &ferr) && ferr.IsNotFound() {
			return domain.Order{}, fmt.Errorf("%w: %s", repositories.ErrNotFound, orderID)
		}
		return domain.Order{}, err
	}
	return toDomainOrder(doc.ID, doc.Data), nil
}

// FindByReceiptNumber resolves an order by its receipt number.
func (r *OrderRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (domain.Order, error) {
	return r.FindByID(ctx, strings.TrimSpace(receiptNumber))
}

// ListByClient returns a client's orders, newest first.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID string, pager domain.Pagination) ([]domain.Order, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("order repository: client id is required")
	}
	limit := pager.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("clientId", "==", clientID).
			OrderBy("createdAt", firestore.Desc).
			Limit(limit)
		if cursor := strings.TrimSpace(pager.Cursor); cursor != "" {
			q = q.StartAfter(cursor)
		}
		return q
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainOrder(doc.ID, doc.Data))
	}
	return out, nil
}

func fromDomainOrder(order domain.Order) orderDocument {
	doc := orderDocument{
		ReceiptNumber: order.ReceiptNumber,
		UniqueTag:     order.UniqueTag,
		BranchID:      order.BranchID,
		ClientID:      order.ClientID,
		TotalAmount:   order.TotalAmount,
		DiscountCode:  order.DiscountCode,
		DiscountBps:   order.DiscountBps,
		Expedited:     order.Expedited,
		ExpediteBps:   order.ExpediteBps,
		Status:        string(order.Status),
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
		CompleteBy:    order.CompleteBy,
	}
	for _, item := range order.Items {
		doc.Items = append(doc.Items, orderItemDocument{
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
			Details:       fromDomainDetails(item.Details),
		})
	}
	return doc
}

func toDomainOrder(id string, doc orderDocument) domain.Order {
	order := domain.Order{
		ID:            id,
		ReceiptNumber: doc.ReceiptNumber,
		UniqueTag:     doc.UniqueTag,
		BranchID:      doc.BranchID,
		ClientID:      doc.ClientID,
		TotalAmount:   doc.TotalAmount,
		DiscountCode:  doc.DiscountCode,
		DiscountBps:   doc.DiscountBps,
		Expedited:     doc.Expedited,
		ExpediteBps:   doc.ExpediteBps,
		Status:        domain.OrderStatus(doc.Status),
		Notes:         doc.Notes,
		CreatedAt:     doc.CreatedAt,
		CompleteBy:    doc.CompleteBy,
	}
	for _, item := range doc.Items {
		order.Items = append(order.Items, domain.OrderItem{
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
			Details:       toDomainDetails(item.Details),
		})
	}
	return order
}

func fromDomainDetails(details []domain.CalculationDetail) []detailDocument {
	if len(details) == 0 {
		return nil
	}
	out := make([]detailDocument, 0, len(details))
	for _, d := range details {
		out = append(out, detailDocument{
			Code:        d.Code,
			Name:        d.Name,
			Effect:      d.Effect,
			PriceBefore: d.PriceBefore,
			PriceAfter:  d.PriceAfter,
			Delta:       d.Delta,
		})
	}
	return out
}

func toDomainDetails(docs []detailDocument) []domain.CalculationDetail {
	if len(docs) == 0 {
		return nil
	}
	out := make([]domain.CalculationDetail, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.CalculationDetail{
			Code:        d.Code,
			Name:        d.Name,
			Effect:      d.Effect,
			PriceBefore: d.PriceBefore,
			PriceAfter:  d.PriceAfter,
			Delta:       d.Delta,
		})
	}
	return out
}
