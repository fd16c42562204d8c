package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/aksi-clean/api/internal/domain"
	pfirestore "github.com/aksi-clean/api/internal/platform/firestore"
	"github.com/aksi-clean/api/internal/repositories"
)

const (
	categoriesCollection = "serviceCategories"
	priceListCollection  = "priceListItems"
	modifiersCollection  = "priceModifiers"
)

type categoryDocument struct {
	Code      string    `firestore:"code"`
	Name      string    `firestore:"name"`
	Active    bool      `firestore:"active"`
	SortOrder int       `firestore:"sortOrder"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type priceListDocument struct {
	CategoryCode  string    `firestore:"categoryCode"`
	ItemCode      string    `firestore:"itemCode"`
	Name          string    `firestore:"name"`
	UnitOfMeasure string    `firestore:"unitOfMeasure"`
	BasePrice     int64     `firestore:"basePrice"`
	PriceBlack    *int64    `firestore:"priceBlack,omitempty"`
	PriceColor    *int64    `firestore:"priceColor,omitempty"`
	Active        bool      `firestore:"active"`
	SortOrder     int       `firestore:"sortOrder"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

type modifierDocument struct {
	Code                 string    `firestore:"code"`
	Name                 string    `firestore:"name"`
	Description          string    `firestore:"description,omitempty"`
	Kind                 string    `firestore:"kind"`
	ValueBps             int64     `firestore:"valueBps,omitempty"`
	Amount               int64     `firestore:"amount,omitempty"`
	MinBps               int64     `firestore:"minBps,omitempty"`
	MaxBps               int64     `firestore:"maxBps,omitempty"`
	CategoryRestrictions []string  `firestore:"categoryRestrictions,omitempty"`
	Active               bool      `firestore:"active"`
	SortOrder            int       `firestore:"sortOrder"`
	UpdatedAt            time.Time `firestore:"updatedAt"`
}

// CatalogRepository serves price list reference data from Firestore.
type CatalogRepository struct {
	categories *pfirestore.BaseRepository[categoryDocument]
	priceList  *pfirestore.BaseRepository[priceListDocument]
	modifiers  *pfirestore.BaseRepository[modifierDocument]
}

// NewCatalogRepository constructs a Firestore-backed catalog repository.
func NewCatalogRepository(provider *pfirestore.Provider) (*CatalogRepository, error) {
	if provider == nil {
		return nil, errors.New("catalog repository requires firestore provider")
	}
	return &CatalogRepository{
		categories: pfirestore.NewBaseRepository[categoryDocument](provider, categoriesCollection, nil, nil),
		priceList:  pfirestore.NewBaseRepository[priceListDocument](provider, priceListCollection, nil, nil),
		modifiers:  pfirestore.NewBaseRepository[modifierDocument](provider, modifiersCollection, nil, nil),
	}, nil
}

// ListCategories returns active service categories ordered for display.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	docs, err := r.categories.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("active", "==", true).OrderBy("sortOrder", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.ServiceCategory, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.ServiceCategory{
			Code:      doc.Data.Code,
			Name:      doc.Data.Name,
			Active:    doc.Data.Active,
			SortOrder: doc.Data.SortOrder,
		})
	}
	return out, nil
}

// ListPriceListItems returns active items for a category ordered for display.
func (r *CatalogRepository) ListPriceListItems(ctx context.Context, categoryCode string) ([]domain.PriceListItem, error) {
	code := strings.TrimSpace(categoryCode)
	if code == "" {
		return nil, errors.New("catalog repository: category code is required")
	}
	docs, err := r.priceList.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("categoryCode", "==", code).
			Where("active", "==", true).
			OrderBy("sortOrder", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PriceListItem, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainPriceListItem(doc.ID, doc.Data))
	}
	return out, nil
}

// FindPriceListItem resolves one active item by category and display name.
func (r *CatalogRepository) FindPriceListItem(ctx context.Context, categoryCode, itemName string) (domain.PriceListItem, error) {
	code := strings.TrimSpace(categoryCode)
	name := strings.TrimSpace(itemName)
	if code == "" || name == "" {
		return domain.PriceListItem{}, errors.New("catalog repository: category code and item name are required")
	}
	docs, err := r.priceList.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("categoryCode", "==", code).
			Where("name", "==", name).
			Where("active", "==", true).
			Limit(1)
	})
	if err != nil {
		return domain.PriceListItem{}, err
	}
	if len(docs) == 0 {
		return domain.PriceListItem{}, fmt.Errorf("%w: %s/%s", repositories.ErrNotFound, code, name)
	}
	return toDomainPriceListItem(docs[0].ID, docs[0].Data), nil
}

// ListModifiers returns active price modifiers in display order.
func (r *CatalogRepository) ListModifiers(ctx context.Context) ([]domain.PriceModifier, error) {
	docs, err := r.modifiers.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("active", "==", true).OrderBy("sortOrder", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.PriceModifier, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainModifier(doc.Data))
	}
	return out, nil
}

// FindModifiers resolves modifiers by code, preserving catalog sort order.
// Any unknown or inactive code fails the whole lookup.
func (r *CatalogRepository) FindModifiers(ctx context.Context, codes []string) ([]domain.PriceModifier, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			return nil, errors.New("catalog repository: empty modifier code")
		}
		wanted[trimmed] = struct{}{}
	}

	all, err := r.ListModifiers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PriceModifier, 0, len(wanted))
	for _, mod := range all {
		if _, ok := wanted[mod.Code]; ok {
			out = append(out, mod)
			delete(wanted, mod.Code)
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for code := range wanted {
			missing = append(missing, code)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: modifiers %s", repositories.ErrNotFound, strings.Join(missing, ", "))
	}
	return out, nil
}

// UpsertPriceListItem writes a price list entry, generating an id for new
// entries.
func (r *CatalogRepository) UpsertPriceListItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error) {
	if strings.TrimSpace(item.CategoryCode) == "" || strings.TrimSpace(item.Name) == "" {
		return domain.PriceListItem{}, errors.New("catalog repository: category code and item name are required")
	}
	now := time.Now().UTC()
	id := strings.TrimSpace(item.ID)
	if id == "" {
		id = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	doc := priceListDocument{
		CategoryCode:  strings.TrimSpace(item.CategoryCode),
		ItemCode:      strings.TrimSpace(item.ItemCode),
		Name:          strings.TrimSpace(item.Name),
		UnitOfMeasure: strings.TrimSpace(item.UnitOfMeasure),
		BasePrice:     item.BasePrice,
		PriceBlack:    item.PriceBlack,
		PriceColor:    item.PriceColor,
		Active:        item.Active,
		SortOrder:     item.SortOrder,
		UpdatedAt:     now,
	}
	if _, err := r.priceList.Set(ctx, id, doc); err != nil {
		return domain.PriceListItem{}, err
	}
	return toDomainPriceListItem(id, doc), nil
}

// UpsertModifier writes a price modifier keyed by its code.
func (r *CatalogRepository) UpsertModifier(ctx context.Context, modifier domain.PriceModifier) (domain.PriceModifier, error) {
	code := strings.TrimSpace(modifier.Code)
	if code == "" {
		return domain.PriceModifier{}, errors.New("catalog repository: modifier code is required")
	}
	doc := modifierDocument{
		Code:                 code,
		Name:                 strings.TrimSpace(modifier.Name),
		Description:          strings.TrimSpace(modifier.Description),
		Kind:                 string(modifier.Kind),
		ValueBps:             modifier.ValueBps,
		Amount:               modifier.Amount,
		MinBps:               modifier.MinBps,
		MaxBps:               modifier.MaxBps,
		CategoryRestrictions: append([]string(nil), modifier.CategoryRestrictions...),
		Active:               modifier.Active,
		SortOrder:            modifier.SortOrder,
		UpdatedAt:            time.Now().UTC(),
	}
	if _, err := r.modifiers.Set(ctx, code, doc); err != nil {
		return domain.PriceModifier{}, err
	}
	return toDomainModifier(doc), nil
}

func toDomainPriceListItem(id string, doc priceListDocument) domain.PriceListItem {
	return domain.PriceListItem{
		ID:            id,
		CategoryCode:  doc.CategoryCode,
		ItemCode:      doc.ItemCode,
		Name:          doc.Name,
		UnitOfMeasure: doc.UnitOfMeasure,
		BasePrice:     doc.BasePrice,
		PriceBlack:    doc.PriceBlack,
		PriceColor:    doc.PriceColor,
		Active:        doc.Active,
		SortOrder:     doc.SortOrder,
	}
}

func toDomainModifier(doc modifierDocument) domain.PriceModifier {
	return domain.PriceModifier{
		Code:                 doc.Code,
		Name:                 doc.Name,
		Description:          doc.Description,
		Kind:                 domain.ModifierKind(doc.Kind),
		ValueBps:             doc.ValueBps,
		Amount:               doc.Amount,
		MinBps:               doc.MinBps,
		MaxBps:               doc.MaxBps,
		CategoryRestrictions: append([]string(nil), doc.CategoryRestrictions...),
		Active:               doc.Active,
		SortOrder:            doc.SortOrder,
	}
}
