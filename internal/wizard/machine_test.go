package wizard

import "testing"

func TestOrderHappyPath(t *testing.T) {
	steps := []struct {
		event OrderEvent
		want  OrderState
	}{
		{EventStartOrder, StateClientSelection},
		{EventClientSelected, StateOrderInitialization},
		{EventOrderInfoCompleted, StateItemManagement},
		{EventAddItem, StateItemWizardActive},
		{EventStartItemWizard, StateItemBasicInfo},
		{EventBasicInfoCompleted, StateItemCharacteristics},
		{EventCharacteristicsComplete, StateItemDefectsStains},
		{EventDefectsCompleted, StateItemPricing},
		{EventPricingCompleted, StateItemPhotos},
		{EventPhotosCompleted, StateItemCompleted},
		{EventItemAdded, StateItemManagement},
		{EventItemsCompleted, StateExecutionParams},
		{EventExecutionParamsSet, StateGlobalDiscounts},
		{EventDiscountsApplied, StatePaymentProcessing},
		{EventPaymentProcessed, StateAdditionalInfo},
		{EventAdditionalInfoCompleted, StateOrderConfirmation},
		{EventReviewOrder, StateOrderReview},
		{EventOrderApproved, StateLegalAspects},
		{EventTermsAccepted, StateReceiptGeneration},
		{EventReceiptGenerated, StateCompleted},
	}

	state := StateInitial
	for _, step := range steps {
		next, ok := NextOrderState(state, step.event)
		if !ok {
			t.Fatalf("event %s rejected in state %s", step.event, state)
		}
		if next != step.want {
			t.Fatalf("event %s in %s: got %s, want %s", step.event, state, next, step.want)
		}
		state = next
	}
	if !state.IsTerminal() {
		t.Fatalf("expected terminal state, got %s", state)
	}
}

func TestOrderSkipPhotos(t *testing.T) {
	next, ok := NextOrderState(StateItemPhotos, EventSkipPhotos)
	if !ok || next != StateItemCompleted {
		t.Fatalf("got (%s, %v), want (%s, true)", next, ok, StateItemCompleted)
	}
}

func TestOrderCancelFromAnyActiveState(t *testing.T) {
	states := []OrderState{
		StateInitial, StateClientSelection, StateOrderInitialization,
		StateItemManagement, StateItemBasicInfo, StateItemPricing,
		StateExecutionParams, StateGlobalDiscounts, StatePaymentProcessing,
		StateOrderConfirmation, StateLegalAspects, StateReceiptGeneration,
	}
	for _, state := range states {
		next, ok := NextOrderState(state, EventCancelOrder)
		if !ok || next != StateCancelled {
			t.Fatalf("cancel from %s: got (%s, %v)", state, next, ok)
		}
	}
}

func TestOrderTerminalStatesRejectEverything(t *testing.T) {
	events := []OrderEvent{
		EventStartOrder, EventClientSelected, EventItemsCompleted,
		EventReceiptGenerated, EventCancelOrder,
	}
	for _, terminal := range []OrderState{StateCompleted, StateCancelled} {
		for _, event := range events {
			next, ok := NextOrderState(terminal, event)
			if ok || next != terminal {
				t.Fatalf("terminal %s accepted %s: got (%s, %v)", terminal, event, next, ok)
			}
		}
	}
}

func TestOrderUndefinedPairRejected(t *testing.T) {
	next, ok := NextOrderState(StateClientSelection, EventPaymentProcessed)
	if ok || next != StateClientSelection {
		t.Fatalf("got (%s, %v), want no-op rejection", next, ok)
	}
}

func TestOrderCancelItemWizardReturnsToManagement(t *testing.T) {
	for _, state := range []OrderState{
		StateItemWizardActive, StateItemBasicInfo, StateItemCharacteristics,
		StateItemDefectsStains, StateItemPricing, StateItemPhotos,
	} {
		next, ok := NextOrderState(state, EventCancelItemWizard)
		if !ok || next != StateItemManagement {
			t.Fatalf("cancel item wizard from %s: got (%s, %v)", state, next, ok)
		}
	}
}

func TestOrderGoBackStepsBackwards(t *testing.T) {
	cases := []struct {
		from OrderState
		want OrderState
	}{
		{StateItemCharacteristics, StateItemBasicInfo},
		{StateItemDefectsStains, StateItemCharacteristics},
		{StateItemPricing, StateItemDefectsStains},
		{StateItemPhotos, StateItemPricing},
	}
	for _, tc := range cases {
		next, ok := NextOrderState(tc.from, EventGoBack)
		if !ok || next != tc.want {
			t.Fatalf("go back from %s: got (%s, %v), want (%s, true)", tc.from, next, ok, tc.want)
		}
	}
	// the first substep has nothing to go back to
	if next, ok := NextOrderState(StateItemBasicInfo, EventGoBack); ok {
		t.Fatalf("go back from %s accepted: got %s", StateItemBasicInfo, next)
	}
	if next, ok := NextOrderState(StateItemManagement, EventGoBack); ok {
		t.Fatalf("go back from %s accepted: got %s", StateItemManagement, next)
	}
}

func TestOrderDeleteItemStaysInManagement(t *testing.T) {
	next, ok := NextOrderState(StateItemManagement, EventDeleteItem)
	if !ok || next != StateItemManagement {
		t.Fatalf("got (%s, %v), want (%s, true)", next, ok, StateItemManagement)
	}
	for _, state := range []OrderState{StateItemBasicInfo, StateExecutionParams, StateClientSelection} {
		if got, ok := NextOrderState(state, EventDeleteItem); ok {
			t.Fatalf("delete item from %s accepted: got %s", state, got)
		}
	}
}

func TestStageOf(t *testing.T) {
	cases := []struct {
		state OrderState
		want  Stage
	}{
		{StateClientSelection, Stage1ClientAndBasics},
		{StateOrderInitialization, Stage1ClientAndBasics},
		{StateItemManagement, Stage2Items},
		{StateItemPhotos, Stage2Items},
		{StatePaymentProcessing, Stage3OrderParams},
		{StateLegalAspects, Stage4Confirmation},
		{StateInitial, 0},
		{StateCompleted, 0},
	}
	for _, tc := range cases {
		if got := StageOf(tc.state); got != tc.want {
			t.Fatalf("StageOf(%s) = %d, want %d", tc.state, got, tc.want)
		}
	}
}
