package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/aksi-clean/api/internal/domain"
)

var (
	// ErrPricingInvalidInput signals malformed calculation parameters such as a
	// negative base price or an unknown modifier code.
	ErrPricingInvalidInput = errors.New("pricing: invalid input")
)

// priceScale is the fixed-point multiplier used for intermediate math. Prices
// stay at full precision until the final half-up rounding back to minor units.
const priceScale int64 = 1_000_000

const bpsDenominator int64 = 10_000

// PriceEventSink receives the immutable snapshot of a finished calculation.
// Publishing is best-effort; sink failures never affect the returned result.
type PriceEventSink interface {
	Publish(ctx context.Context, event domain.PriceCalculatedEvent) error
}

// PricingEngineDeps bundles collaborators for NewPricingEngine.
type PricingEngineDeps struct {
	// ExpediteExcludedCategories lists category codes that never receive the
	// expedite surcharge.
	ExpediteExcludedCategories []string
	// DiscountExcludedCategories lists category codes ineligible for global
	// discounts.
	DiscountExcludedCategories []string
	Sink                       PriceEventSink
	Clock                      func() time.Time
	Logger                     *zap.Logger
}

// PricingEngine derives a deterministic price breakdown from
// domain.PriceCalculationParams. It holds no mutable state and is safe for
// concurrent use.
type PricingEngine struct {
	expediteExcluded map[string]struct{}
	discountExcluded map[string]struct{}
	sink             PriceEventSink
	clock            func() time.Time
	logger           *zap.Logger
	fold             cases.Caser
}

// NewPricingEngine constructs the engine. Sink may be nil, in which case no
// events are emitted.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PricingEngine{
		expediteExcluded: toSet(deps.ExpediteExcludedCategories),
		discountExcluded: toSet(deps.DiscountExcludedCategories),
		sink:             deps.Sink,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
		fold:   cases.Fold(),
	}, nil
}

// IsDiscountApplicableToCategory reports whether global discounts may be
// layered on items of the given category. Membership in the exclusion set is
// injected configuration, not code.
func (e *PricingEngine) IsDiscountApplicableToCategory(categoryCode string) bool {
	_, excluded := e.discountExcluded[strings.TrimSpace(categoryCode)]
	return !excluded
}

// Calculate runs the full pricing algorithm:
//
//  1. resolve the color-adjusted base unit price
//  2. apply modifiers in declaration order
//  3. apply the expedite surcharge unless the category is excluded
//  4. multiply by quantity
//  5. layer the discount when the category is eligible
//  6. round half-up to minor units
//
// Identical params produce identical results including the ordered detail
// list. The event is created once, after the price is fixed, and published
// best-effort.
func (e *PricingEngine) Calculate(ctx context.Context, params domain.PriceCalculationParams) (domain.PriceCalculationResult, error) {
	if err := validateParams(params); err != nil {
		return domain.PriceCalculationResult{}, err
	}

	baseUnit := e.resolveBasePrice(params)

	details := make([]domain.CalculationDetail, 0, len(params.Modifiers)+2)
	applied := make([]string, 0, len(params.Modifiers))

	// Running unit price at fixed-point precision.
	unit := baseUnit * priceScale

	for _, modifier := range params.Modifiers {
		next, detail, err := applyModifier(unit, modifier, params)
		if err != nil {
			return domain.PriceCalculationResult{}, err
		}
		unit = next
		details = append(details, detail)
		applied = append(applied, modifier.Code)
	}

	if params.Expedited {
		if _, excluded := e.expediteExcluded[params.CategoryCode]; !excluded && params.ExpediteBps > 0 {
			before := unit
			unit = applyBps(unit, params.ExpediteBps)
			details = append(details, buildDetail("EXPEDITE", "Термінове виконання",
				fmt.Sprintf("+%s%%", formatBps(params.ExpediteBps)), before, unit))
		}
	}

	total := unit * params.Quantity

	discountApplied := false
	if params.DiscountBps > 0 && e.IsDiscountApplicableToCategory(params.CategoryCode) {
		before := total
		total = applyBps(total, -params.DiscountBps)
		details = append(details, buildDetail(discountDetailCode(params.DiscountCode), "Знижка",
			fmt.Sprintf("-%s%%", formatBps(params.DiscountBps)), before, total))
		discountApplied = true
	}

	result := domain.PriceCalculationResult{
		BaseUnitPrice:   baseUnit,
		FinalUnitPrice:  roundHalfUp(unit),
		BaseTotalPrice:  baseUnit * params.Quantity,
		FinalTotalPrice: roundHalfUp(total),
		Quantity:        params.Quantity,
		AppliedCodes:    applied,
		Details:         details,
		DiscountApplied: discountApplied,
	}

	e.emit(ctx, params, result)

	return result, nil
}

func (e *PricingEngine) emit(ctx context.Context, params domain.PriceCalculationParams, result domain.PriceCalculationResult) {
	if e.sink == nil {
		return
	}

	now := e.clock()
	event := domain.PriceCalculatedEvent{
		ID:             ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		OccurredAt:     now,
		CategoryCode:   params.CategoryCode,
		ItemName:       params.ItemName,
		Color:          params.Color,
		Quantity:       params.Quantity,
		BaseUnitPrice:  result.BaseUnitPrice,
		FinalUnitPrice: result.FinalUnitPrice,
		FinalTotal:     result.FinalTotalPrice,
		AppliedCodes:   append([]string(nil), result.AppliedCodes...),
		Expedited:      params.Expedited,
		DiscountBps:    params.DiscountBps,
		UnitOfMeasure:  params.UnitOfMeasure,
	}

	if err := e.sink.Publish(ctx, event); err != nil {
		e.logger.Warn("price calculated event publish failed",
			zap.String("category", params.CategoryCode),
			zap.String("item", params.ItemName),
			zap.Error(err))
	}
}

// resolveBasePrice picks the color tier: black colors use the black tier,
// white/natural always use the plain base price, any other color uses the
// color tier when present.
func (e *PricingEngine) resolveBasePrice(params domain.PriceCalculationParams) int64 {
	color := e.fold.String(strings.TrimSpace(params.Color))

	switch color {
	case "":
		return params.BasePrice
	case "black", "чорний":
		if params.PriceBlack != nil {
			return *params.PriceBlack
		}
		return params.BasePrice
	case "white", "natural", "білий", "натуральний":
		return params.BasePrice
	default:
		if params.PriceColor != nil {
			return *params.PriceColor
		}
		return params.BasePrice
	}
}

func validateParams(params domain.PriceCalculationParams) error {
	if params.BasePrice < 0 {
		return fmt.Errorf("%w: base price cannot be negative", ErrPricingInvalidInput)
	}
	if params.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrPricingInvalidInput)
	}
	if params.ExpediteBps < 0 {
		return fmt.Errorf("%w: expedite surcharge cannot be negative", ErrPricingInvalidInput)
	}
	if params.DiscountBps < 0 || params.DiscountBps > bpsDenominator {
		return fmt.Errorf("%w: discount must be within [0%%, 100%%]", ErrPricingInvalidInput)
	}

	known := make(map[string]domain.ModifierKind, len(params.Modifiers))
	for _, modifier := range params.Modifiers {
		if strings.TrimSpace(modifier.Code) == "" {
			return fmt.Errorf("%w: modifier with empty code", ErrPricingInvalidInput)
		}
		if !modifier.Active {
			return fmt.Errorf("%w: modifier %s is inactive", ErrPricingInvalidInput, modifier.Code)
		}
		if !modifier.AppliesToCategory(params.CategoryCode) {
			return fmt.Errorf("%w: modifier %s not applicable to category %s",
				ErrPricingInvalidInput, modifier.Code, params.CategoryCode)
		}
		known[modifier.Code] = modifier.Kind
	}

	for code := range params.RangeSelections {
		kind, ok := known[code]
		if !ok {
			return fmt.Errorf("%w: unknown modifier code %s referenced by range selection", ErrPricingInvalidInput, code)
		}
		if kind != domain.ModifierRangePercentage {
			return fmt.Errorf("%w: modifier %s does not accept a range selection", ErrPricingInvalidInput, code)
		}
	}
	for code, count := range params.FixedCounts {
		kind, ok := known[code]
		if !ok {
			return fmt.Errorf("%w: unknown modifier code %s referenced by fixed count", ErrPricingInvalidInput, code)
		}
		if kind != domain.ModifierFixedAmount {
			return fmt.Errorf("%w: modifier %s does not accept a fixed count", ErrPricingInvalidInput, code)
		}
		if count <= 0 {
			return fmt.Errorf("%w: fixed count for %s must be positive", ErrPricingInvalidInput, code)
		}
	}

	return nil
}

func applyModifier(unit int64, modifier domain.PriceModifier, params domain.PriceCalculationParams) (int64, domain.CalculationDetail, error) {
	before := unit

	switch modifier.Kind {
	case domain.ModifierPercentage:
		after := applyBps(unit, modifier.ValueBps)
		return after, buildDetail(modifier.Code, modifier.Name, formatSignedBps(modifier.ValueBps), before, after), nil

	case domain.ModifierFixedAmount:
		count, ok := params.FixedCounts[modifier.Code]
		if !ok {
			count = 1
		}
		after := unit + modifier.Amount*count*priceScale
		effect := fmt.Sprintf("+%d × %d", modifier.Amount, count)
		return after, buildDetail(modifier.Code, modifier.Name, effect, before, after), nil

	case domain.ModifierRangePercentage:
		chosen, ok := params.RangeSelections[modifier.Code]
		if !ok {
			return 0, domain.CalculationDetail{}, fmt.Errorf("%w: modifier %s requires a chosen percentage",
				ErrPricingInvalidInput, modifier.Code)
		}
		if chosen < modifier.MinBps || chosen > modifier.MaxBps {
			return 0, domain.CalculationDetail{}, fmt.Errorf("%w: modifier %s value %s%% outside [%s%%, %s%%]",
				ErrPricingInvalidInput, modifier.Code,
				formatBps(chosen), formatBps(modifier.MinBps), formatBps(modifier.MaxBps))
		}
		after := applyBps(unit, chosen)
		return after, buildDetail(modifier.Code, modifier.Name, formatSignedBps(chosen), before, after), nil

	default:
		return 0, domain.CalculationDetail{}, fmt.Errorf("%w: modifier %s has unknown kind %q",
			ErrPricingInvalidInput, modifier.Code, modifier.Kind)
	}
}

func applyBps(price int64, bps int64) int64 {
	return price * (bpsDenominator + bps) / bpsDenominator
}

func buildDetail(code, name, effect string, before, after int64) domain.CalculationDetail {
	return domain.CalculationDetail{
		Code:        code,
		Name:        name,
		Effect:      effect,
		PriceBefore: roundHalfUp(before),
		PriceAfter:  roundHalfUp(after),
		Delta:       roundHalfUp(after) - roundHalfUp(before),
	}
}

func roundHalfUp(scaled int64) int64 {
	if scaled >= 0 {
		return (scaled + priceScale/2) / priceScale
	}
	return -((-scaled + priceScale/2) / priceScale)
}

func formatBps(bps int64) string {
	if bps%100 == 0 {
		return fmt.Sprintf("%d", bps/100)
	}
	return strings.TrimRight(fmt.Sprintf("%d.%02d", bps/100, bps%100), "0")
}

func formatSignedBps(bps int64) string {
	if bps < 0 {
		return "-" + formatBps(-bps) + "%"
	}
	return "+" + formatBps(bps) + "%"
}

func discountDetailCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "DISCOUNT"
	}
	return code
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}
