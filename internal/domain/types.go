package domain

import "time"

// Client is a dry-cleaning customer captured during order intake.
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	Source    string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName renders the display name used on receipts.
func (c Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.LastName + " " + c.FirstName
	}
}

// Operator is a staff member who signs in to take orders at a branch.
type Operator struct {
	ID           string
	Login        string
	Name         string
	BranchID     string
	Roles        []string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkingHours describes a branch's opening window for a single weekday.
type WorkingHours struct {
	Weekday time.Weekday
	Open    string
	Close   string
	DayOff  bool
}

// Branch is a physical reception point where orders are taken in.
type Branch struct {
	ID        string
	Code      string
	Name      string
	Address   string
	Phone     string
	Active    bool
	Schedule  []WorkingHours
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceCategory groups price list items (clothing, leather, laundry, ...).
type ServiceCategory struct {
	Code      string
	Name      string
	Active    bool
	SortOrder int
}

// PriceListItem is a catalog entry with color-tiered base pricing.
// All monetary values are in currency minor units (kopiykas).
type PriceListItem struct {
	ID            string
	CategoryCode  string
	ItemCode      string
	Name          string
	UnitOfMeasure string
	BasePrice     int64
	// PriceBlack and PriceColor are optional tier prices used by dyeing
	// services; nil means the tier falls back to BasePrice.
	PriceBlack *int64
	PriceColor *int64
	Active     bool
	SortOrder  int
}

// OrderStatus tracks an order after wizard completion.
type OrderStatus string

const (
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusPickedUp   OrderStatus = "picked_up"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderItem is a finalized wizard item with its immutable price breakdown.
type OrderItem struct {
	ID            string
	CategoryCode  string
	ItemName      string
	Quantity      int64
	UnitOfMeasure string
	Color         string
	Material      string
	WearLevel     string
	Stains        []string
	Defects       []string
	Risks         []string
	PhotoPaths    []string
	BaseUnitPrice int64
	UnitPrice     int64
	TotalPrice    int64
	ModifierCodes []string
	Details       []CalculationDetail
}

// Order is the payload delivered to the result sink when a wizard session
// completes. It is immutable once assembled.
type Order struct {
	ID            string
	ReceiptNumber string
	UniqueTag     string
	BranchID      string
	ClientID      string
	Items         []OrderItem
	TotalAmount   int64
	DiscountCode  string
	DiscountBps   int64
	Expedited     bool
	ExpediteBps   int64
	Status        OrderStatus
	Notes         string
	CreatedAt     time.Time
	CompleteBy    time.Time
}

// Pagination mirrors cursor/limit parameters used by list operations.
type Pagination struct {
	Limit  int
	Cursor string
}
