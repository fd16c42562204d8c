package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aksi-clean/api/internal/domain"
)

type stubPriceEventSink struct {
	mu     sync.Mutex
	events []domain.PriceCalculatedEvent
	err    error
}

func (s *stubPriceEventSink) Publish(_ context.Context, event domain.PriceCalculatedEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return s.err
}

func newTestEngine(t *testing.T, deps PricingEngineDeps) *PricingEngine {
	t.Helper()
	if deps.Clock == nil {
		deps.Clock = func() time.Time {
			return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
		}
	}
	engine, err := NewPricingEngine(deps)
	if err != nil {
		t.Fatalf("new pricing engine: %v", err)
	}
	return engine
}

func int64Ptr(v int64) *int64 { return &v }

func TestCalculateBlackTierWithFixedModifier(t *testing.T) {
	sink := &stubPriceEventSink{}
	engine := newTestEngine(t, PricingEngineDeps{Sink: sink})

	params := domain.PriceCalculationParams{
		CategoryCode: "dyeing",
		ItemName:     "Пальто",
		BasePrice:    10000,
		PriceBlack:   int64Ptr(9000),
		Color:        "black",
		Quantity:     2,
		Modifiers: []domain.PriceModifier{
			{Code: "BUTTONS", Name: "Пришивання гудзиків", Kind: domain.ModifierFixedAmount, Amount: 500, Active: true},
		},
	}

	result, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if result.FinalUnitPrice != 9500 {
		t.Fatalf("expected final unit price 9500, got %d", result.FinalUnitPrice)
	}
	if result.FinalTotalPrice != 19000 {
		t.Fatalf("expected final total 19000, got %d", result.FinalTotalPrice)
	}
	if result.BaseUnitPrice != 9000 {
		t.Fatalf("expected black tier base 9000, got %d", result.BaseUnitPrice)
	}
	if len(result.Details) != 1 || result.Details[0].Code != "BUTTONS" {
		t.Fatalf("expected one BUTTONS detail, got %+v", result.Details)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(sink.events))
	}
	event := sink.events[0]
	if event.FinalTotal != 19000 || event.Quantity != 2 || event.ID == "" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestCalculateColorTierSelection(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{})

	base := domain.PriceCalculationParams{
		CategoryCode: "dyeing",
		BasePrice:    10000,
		PriceBlack:   int64Ptr(9000),
		PriceColor:   int64Ptr(12000),
		Quantity:     1,
	}

	cases := []struct {
		color string
		want  int64
	}{
		{"black", 9000},
		{"  ЧОРНИЙ ", 9000},
		{"white", 10000},
		{"natural", 10000},
		{"Білий", 10000},
		{"натуральний", 10000},
		{"red", 12000},
		{"", 10000},
	}

	for _, tc := range cases {
		params := base
		params.Color = tc.color
		result, err := engine.Calculate(context.Background(), params)
		if err != nil {
			t.Fatalf("calculate color %q: %v", tc.color, err)
		}
		if result.FinalUnitPrice != tc.want {
			t.Fatalf("color %q: expected %d, got %d", tc.color, tc.want, result.FinalUnitPrice)
		}
	}
}

func TestCalculateExpediteExclusion(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{
		ExpediteExcludedCategories: []string{"carpets"},
	})

	params := domain.PriceCalculationParams{
		CategoryCode: "carpets",
		BasePrice:    5000,
		Quantity:     1,
		Expedited:    true,
		ExpediteBps:  5000,
	}

	expedited, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("calculate expedited: %v", err)
	}

	params.Expedited = false
	plain, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("calculate plain: %v", err)
	}

	if expedited.FinalTotalPrice != plain.FinalTotalPrice {
		t.Fatalf("excluded category must not be surcharged: %d vs %d",
			expedited.FinalTotalPrice, plain.FinalTotalPrice)
	}

	params.CategoryCode = "clothing"
	params.Expedited = true
	surcharged, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("calculate surcharged: %v", err)
	}
	if surcharged.FinalUnitPrice != 7500 {
		t.Fatalf("expected 50%% surcharge to yield 7500, got %d", surcharged.FinalUnitPrice)
	}
}

func TestCalculateRangeModifierBounds(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{})

	params := domain.PriceCalculationParams{
		CategoryCode: "clothing",
		BasePrice:    10000,
		Quantity:     1,
		Modifiers: []domain.PriceModifier{
			{Code: "HAND_WORK", Name: "Ручна робота", Kind: domain.ModifierRangePercentage, MinBps: 2000, MaxBps: 10000, Active: true},
		},
		RangeSelections: map[string]int64{"HAND_WORK": 12000},
	}

	if _, err := engine.Calculate(context.Background(), params); !errors.Is(err, ErrPricingInvalidInput) {
		t.Fatalf("expected invalid input for out-of-range selection, got %v", err)
	}

	params.RangeSelections["HAND_WORK"] = 5000
	result, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("calculate in-range: %v", err)
	}
	if result.FinalUnitPrice != 15000 {
		t.Fatalf("expected +50%% to yield 15000, got %d", result.FinalUnitPrice)
	}
}

func TestCalculateRejectsMalformedInput(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{})

	cases := []struct {
		name   string
		params domain.PriceCalculationParams
	}{
		{"negative base price", domain.PriceCalculationParams{BasePrice: -1, Quantity: 1}},
		{"zero quantity", domain.PriceCalculationParams{BasePrice: 100, Quantity: 0}},
		{"unknown fixed count code", domain.PriceCalculationParams{
			BasePrice: 100, Quantity: 1,
			FixedCounts: map[string]int64{"GHOST": 2},
		}},
		{"unknown range code", domain.PriceCalculationParams{
			BasePrice: 100, Quantity: 1,
			RangeSelections: map[string]int64{"GHOST": 2000},
		}},
		{"inactive modifier", domain.PriceCalculationParams{
			BasePrice: 100, Quantity: 1,
			Modifiers: []domain.PriceModifier{{Code: "OLD", Kind: domain.ModifierPercentage, ValueBps: 1000}},
		}},
	}

	for _, tc := range cases {
		if _, err := engine.Calculate(context.Background(), tc.params); !errors.Is(err, ErrPricingInvalidInput) {
			t.Fatalf("%s: expected ErrPricingInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestCalculateNoEventOnFailure(t *testing.T) {
	sink := &stubPriceEventSink{}
	engine := newTestEngine(t, PricingEngineDeps{Sink: sink})

	params := domain.PriceCalculationParams{BasePrice: -5, Quantity: 1}
	if _, err := engine.Calculate(context.Background(), params); err == nil {
		t.Fatal("expected error")
	}
	if len(sink.events) != 0 {
		t.Fatalf("no event may be published for a failed calculation, got %d", len(sink.events))
	}
}

func TestCalculateSinkErrorDoesNotAffectResult(t *testing.T) {
	sink := &stubPriceEventSink{err: errors.New("broker down")}
	engine := newTestEngine(t, PricingEngineDeps{Sink: sink})

	result, err := engine.Calculate(context.Background(), domain.PriceCalculationParams{
		BasePrice: 100, Quantity: 3,
	})
	if err != nil {
		t.Fatalf("sink failure must not fail the calculation: %v", err)
	}
	if result.FinalTotalPrice != 300 {
		t.Fatalf("expected total 300, got %d", result.FinalTotalPrice)
	}
}

func TestCalculateDeterminism(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{})

	params := domain.PriceCalculationParams{
		CategoryCode: "clothing",
		ItemName:     "Сукня",
		BasePrice:    12345,
		Color:        "green",
		Quantity:     3,
		Modifiers: []domain.PriceModifier{
			{Code: "SILK", Name: "Делікатна тканина", Kind: domain.ModifierPercentage, ValueBps: 1550, Active: true},
			{Code: "BUTTONS", Name: "Гудзики", Kind: domain.ModifierFixedAmount, Amount: 700, Active: true},
			{Code: "HAND_WORK", Name: "Ручна робота", Kind: domain.ModifierRangePercentage, MinBps: 2000, MaxBps: 10000, Active: true},
		},
		RangeSelections: map[string]int64{"HAND_WORK": 3300},
		FixedCounts:     map[string]int64{"BUTTONS": 4},
		Expedited:       true,
		ExpediteBps:     10000,
		DiscountCode:    "SOCIAL",
		DiscountBps:     1000,
	}

	first, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("first calculate: %v", err)
	}
	second, err := engine.Calculate(context.Background(), params)
	if err != nil {
		t.Fatalf("second calculate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical params must produce identical results:\n%+v\n%+v", first, second)
	}
	if len(first.Details) != 5 {
		t.Fatalf("expected 5 detail entries (3 modifiers + expedite + discount), got %d", len(first.Details))
	}
}

func TestCalculateMonotonicRounding(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{})

	build := func(bps int64) domain.PriceCalculationParams {
		return domain.PriceCalculationParams{
			CategoryCode: "clothing",
			BasePrice:    9999,
			Quantity:     1,
			Modifiers: []domain.PriceModifier{
				{Code: "MOD", Kind: domain.ModifierPercentage, ValueBps: bps, Active: true},
			},
		}
	}

	lower, err := engine.Calculate(context.Background(), build(1500))
	if err != nil {
		t.Fatalf("calculate lower: %v", err)
	}
	higher, err := engine.Calculate(context.Background(), build(1501))
	if err != nil {
		t.Fatalf("calculate higher: %v", err)
	}

	if higher.FinalUnitPrice < lower.FinalUnitPrice {
		t.Fatalf("rounding inverted the order: %d < %d", higher.FinalUnitPrice, lower.FinalUnitPrice)
	}
}

func TestDiscountEligibilityQuery(t *testing.T) {
	engine := newTestEngine(t, PricingEngineDeps{
		DiscountExcludedCategories: []string{"laundry", "ironing"},
	})

	if engine.IsDiscountApplicableToCategory("laundry") {
		t.Fatal("excluded category must not be discount eligible")
	}
	if !engine.IsDiscountApplicableToCategory("clothing") {
		t.Fatal("non-excluded category must be discount eligible")
	}

	result, err := engine.Calculate(context.Background(), domain.PriceCalculationParams{
		CategoryCode: "laundry",
		BasePrice:    1000,
		Quantity:     1,
		DiscountCode: "SOCIAL",
		DiscountBps:  2000,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.DiscountApplied || result.FinalTotalPrice != 1000 {
		t.Fatalf("discount must be skipped for excluded category: %+v", result)
	}
}
