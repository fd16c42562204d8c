package repositories

import (
	"context"
	"errors"

	domain "github.com/aksi-clean/api/internal/domain"
)

var (
	// ErrNotFound flags a lookup miss in any repository.
	ErrNotFound = errors.New("repositories: not found")
	// ErrAlreadyExists flags a uniqueness violation on create.
	ErrAlreadyExists = errors.New("repositories: already exists")
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Catalog() CatalogRepository
	Clients() ClientRepository
	Operators() OperatorRepository
	Branches() BranchRepository
	Orders() OrderRepository
	Counters() CounterRepository
	Health() HealthRepository
}

// CatalogRepository serves price list reference data: categories, items, and
// price modifiers.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.ServiceCategory, error)
	ListPriceListItems(ctx context.Context, categoryCode string) ([]domain.PriceListItem, error)
	FindPriceListItem(ctx context.Context, categoryCode, itemName string) (domain.PriceListItem, error)
	ListModifiers(ctx context.Context) ([]domain.PriceModifier, error)
	FindModifiers(ctx context.Context, codes []string) ([]domain.PriceModifier, error)
	UpsertPriceListItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error)
	UpsertModifier(ctx context.Context, modifier domain.PriceModifier) (domain.PriceModifier, error)
}

// ClientRepository persists dry-cleaning clients.
type ClientRepository interface {
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Update(ctx context.Context, client domain.Client) (domain.Client, error)
	FindByID(ctx context.Context, clientID string) (domain.Client, error)
	Search(ctx context.Context, query ClientSearchQuery) ([]domain.Client, error)
}

// ClientSearchQuery narrows a client lookup; empty fields are ignored.
type ClientSearchQuery struct {
	Phone    string
	LastName string
	Limit    int
}

// OperatorRepository persists staff accounts used for sign-in.
type OperatorRepository interface {
	FindByLogin(ctx context.Context, login string) (domain.Operator, error)
	FindByID(ctx context.Context, operatorID string) (domain.Operator, error)
}

// BranchRepository persists branch reference data.
type BranchRepository interface {
	FindByID(ctx context.Context, branchID string) (domain.Branch, error)
	ListActive(ctx context.Context) ([]domain.Branch, error)
}

// OrderRepository persists completed orders.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (domain.Order, error)
	ListByClient(ctx context.Context, clientID string, pager domain.Pagination) ([]domain.Order, error)
}

// CounterRepository provides atomic sequence generation for receipt numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// CounterConfig captures optional counter tuning parameters.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}

// HealthRepository evaluates dependency probes for readiness reporting.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
