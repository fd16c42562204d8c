package wizard

// PricingState tracks the item pricing substep. Price calculation itself is
// delegated to the pricing engine; this machine only sequences the flow.
type PricingState string

const (
	PricingInitial          PricingState = "INITIAL"
	PricingCalculatingBase  PricingState = "CALCULATING_BASE_PRICE"
	PricingSelectingMods    PricingState = "SELECTING_MODIFIERS"
	PricingCalculatingFinal PricingState = "CALCULATING_FINAL_PRICE"
	PricingCompleted        PricingState = "COMPLETED"
	PricingError            PricingState = "ERROR"
)

// PricingEvent drives the pricing substep.
type PricingEvent string

const (
	PricingInitialize     PricingEvent = "INITIALIZE"
	PricingCalculateBase  PricingEvent = "CALCULATE_BASE_PRICE"
	PricingAddModifier    PricingEvent = "ADD_MODIFIER"
	PricingRemoveModifier PricingEvent = "REMOVE_MODIFIER"
	PricingCalculateFinal PricingEvent = "CALCULATE_FINAL_PRICE"
	PricingConfirm        PricingEvent = "CONFIRM_CALCULATION"
	PricingHandleError    PricingEvent = "HANDLE_ERROR"
	PricingReset          PricingEvent = "RESET_CALCULATION"
)

var pricingTransitions = table[PricingState, PricingEvent]{
	PricingInitial: {
		PricingInitialize: PricingCalculatingBase,
	},
	PricingCalculatingBase: {
		PricingCalculateBase: PricingSelectingMods,
		PricingHandleError:   PricingError,
	},
	PricingSelectingMods: {
		PricingAddModifier:    PricingSelectingMods,
		PricingRemoveModifier: PricingSelectingMods,
		PricingCalculateFinal: PricingCalculatingFinal,
		PricingHandleError:    PricingError,
	},
	PricingCalculatingFinal: {
		PricingConfirm:     PricingCompleted,
		PricingHandleError: PricingError,
	},
}

// NextPricingState applies event to state; RESET_CALCULATION returns to
// INITIAL from anywhere, undefined pairs are rejected.
func NextPricingState(state PricingState, event PricingEvent) (PricingState, bool) {
	if event == PricingReset {
		return PricingInitial, true
	}
	return pricingTransitions.next(state, event)
}
