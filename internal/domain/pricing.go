package domain

import "time"

// ModifierKind enumerates the supported price modifier behaviours.
type ModifierKind string

const (
	// ModifierPercentage adjusts the running unit price by a fixed percentage.
	ModifierPercentage ModifierKind = "PERCENTAGE"
	// ModifierFixedAmount adds a fixed amount per applied count.
	ModifierFixedAmount ModifierKind = "FIXED_AMOUNT"
	// ModifierRangePercentage adjusts by a caller-chosen percentage bounded
	// by [MinBps, MaxBps].
	ModifierRangePercentage ModifierKind = "RANGE_PERCENTAGE"
)

// PriceModifier is immutable catalog reference data describing one price rule.
// Percentage values are in basis points (1550 = 15.5%); fixed amounts are in
// currency minor units.
type PriceModifier struct {
	Code        string
	Name        string
	Description string
	Kind        ModifierKind
	ValueBps    int64
	Amount      int64
	MinBps      int64
	MaxBps      int64
	// CategoryRestrictions limits applicability; empty means all categories.
	CategoryRestrictions []string
	Active               bool
	SortOrder            int
}

// AppliesToCategory reports whether the modifier may be used for a category.
func (m PriceModifier) AppliesToCategory(categoryCode string) bool {
	if len(m.CategoryRestrictions) == 0 {
		return true
	}
	for _, code := range m.CategoryRestrictions {
		if code == categoryCode {
			return true
		}
	}
	return false
}

// PriceCalculationParams is the complete, self-contained input of a pricing
// run. The engine never reaches past this value, which is what makes the
// calculation deterministic and safe to run on any goroutine.
type PriceCalculationParams struct {
	CategoryCode  string
	ItemName      string
	UnitOfMeasure string

	// Base unit prices in minor units; nil tier prices fall back to BasePrice.
	BasePrice  int64
	PriceBlack *int64
	PriceColor *int64

	Color    string
	Quantity int64

	// Modifiers are applied in slice order.
	Modifiers []PriceModifier
	// RangeSelections maps modifier code to the chosen basis points for
	// RANGE_PERCENTAGE modifiers.
	RangeSelections map[string]int64
	// FixedCounts maps modifier code to applied count for FIXED_AMOUNT
	// modifiers; absent codes default to 1.
	FixedCounts map[string]int64

	Expedited    bool
	ExpediteBps  int64
	DiscountCode string
	DiscountBps  int64
}

// CalculationDetail is one human-readable audit entry appended per applied
// price adjustment.
type CalculationDetail struct {
	Code        string
	Name        string
	Effect      string
	PriceBefore int64
	PriceAfter  int64
	Delta       int64
}

// PriceCalculationResult is the deterministic output of the pricing engine.
type PriceCalculationResult struct {
	BaseUnitPrice   int64
	FinalUnitPrice  int64
	BaseTotalPrice  int64
	FinalTotalPrice int64
	Quantity        int64
	AppliedCodes    []string
	Details         []CalculationDetail
	DiscountApplied bool
}

// PriceCalculatedEvent is the immutable snapshot published after a successful
// calculation. It is created exactly once, after the price has been fixed.
type PriceCalculatedEvent struct {
	ID             string
	OccurredAt     time.Time
	CategoryCode   string
	ItemName       string
	Color          string
	Quantity       int64
	BaseUnitPrice  int64
	FinalUnitPrice int64
	FinalTotal     int64
	AppliedCodes   []string
	Expedited      bool
	DiscountBps    int64
	UnitOfMeasure  string
}
