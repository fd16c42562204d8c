package services

import (
	"context"
	"time"

	domain "github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination             = domain.Pagination
	Client                 = domain.Client
	Branch                 = domain.Branch
	ServiceCategory        = domain.ServiceCategory
	PriceListItem          = domain.PriceListItem
	PriceModifier          = domain.PriceModifier
	PriceCalculationParams = domain.PriceCalculationParams
	PriceCalculationResult = domain.PriceCalculationResult
	Order                  = domain.Order
	OrderItem              = domain.OrderItem
	OrderStatus            = domain.OrderStatus
	SystemHealthReport     = domain.SystemHealthReport
)

// AuthService signs staff members in and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, cmd LoginCommand) (LoginResult, error)
}

// CatalogService serves price list reference data to the wizard and handlers.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]ServiceCategory, error)
	ListPriceListItems(ctx context.Context, categoryCode string) ([]PriceListItem, error)
	GetPriceListItem(ctx context.Context, categoryCode, itemName string) (PriceListItem, error)
	ListModifiers(ctx context.Context) ([]PriceModifier, error)
	GetModifiers(ctx context.Context, codes []string) ([]PriceModifier, error)
	UpsertPriceListItem(ctx context.Context, item PriceListItem) (PriceListItem, error)
	UpsertModifier(ctx context.Context, modifier PriceModifier) (PriceModifier, error)
}

// ClientService manages the customer directory used during order intake.
type ClientService interface {
	CreateClient(ctx context.Context, cmd UpsertClientCommand) (Client, error)
	UpdateClient(ctx context.Context, cmd UpsertClientCommand) (Client, error)
	GetClient(ctx context.Context, clientID string) (Client, error)
	SearchClients(ctx context.Context, query ClientSearchQuery) ([]Client, error)
}

// BranchService exposes branch reference data.
type BranchService interface {
	GetBranch(ctx context.Context, branchID string) (Branch, error)
	ListBranches(ctx context.Context) ([]Branch, error)
}

// CounterService manages named counter sequences and receipt numbering.
type CounterService interface {
	Next(ctx context.Context, scope, name string, opts CounterGenerationOptions) (CounterValue, error)
	NextReceiptNumber(ctx context.Context, branchCode string) (string, error)
}

// OrderService assembles and persists orders produced by completed wizard
// sessions and serves order lookups.
type OrderService interface {
	CompleteSession(ctx context.Context, cmd CompleteSessionCommand) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	GetOrderByReceipt(ctx context.Context, receiptNumber string) (Order, error)
	ListClientOrders(ctx context.Context, clientID string, pager Pagination) ([]Order, error)
}

// PhotoService issues signed URLs for item photo uploads and downloads so
// operator terminals talk to the bucket directly.
type PhotoService interface {
	CreateUploadURL(ctx context.Context, cmd PhotoUploadCommand) (PhotoURL, error)
	CreateDownloadURL(ctx context.Context, cmd PhotoDownloadCommand) (PhotoURL, error)
}

// SystemService aggregates utility endpoints (health checks, counters).
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
	NextCounterValue(ctx context.Context, cmd CounterCommand) (int64, error)
}

// Command and DTO definitions ------------------------------------------------

// LoginCommand carries the credentials submitted at sign-in.
type LoginCommand struct {
	Login    string
	Password string
}

// LoginResult is the issued token plus the operator's profile.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Operator  domain.Operator
}

// UpsertClientCommand carries client intake data.
type UpsertClientCommand struct {
	ClientID  string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	Source    string
	Notes     string
}

// ClientSearchQuery narrows a client directory search.
type ClientSearchQuery = repositories.ClientSearchQuery

// CounterGenerationOptions controls how counter values are incremented and formatted.
type CounterGenerationOptions struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
	Prefix       string
	Suffix       string
	PadLength    int
	Formatter    func(now time.Time, seq int64) string
}

// CounterValue reports both the raw and formatted counter reading.
type CounterValue struct {
	Value     int64
	Formatted string
}

// CounterCommand requests a raw counter increment.
type CounterCommand struct {
	CounterID string
	Step      int64
}

// PhotoUploadCommand requests a signed upload URL for an item photo.
type PhotoUploadCommand struct {
	SessionID   string
	ItemID      string
	FileName    string
	ContentType string
	ContentMD5  string
	Metadata    map[string]string
}

// PhotoDownloadCommand requests a signed download URL for a stored photo.
type PhotoDownloadCommand struct {
	ObjectPath  string
	Disposition string
}

// PhotoURL is the signed URL handed back to the caller.
type PhotoURL struct {
	ObjectPath string
	URL        string
	Method     string
	ExpiresAt  time.Time
	Headers    map[string]string
}

// CompleteSessionCommand closes a wizard session into a persisted order.
type CompleteSessionCommand struct {
	SessionID    string
	DiscountCode string
	DiscountBps  int64
	Expedited    bool
	Notes        string
	CompleteBy   time.Time
}
